package domain

import "encoding/json"

// PieceMetaKind discriminates how a box participates in pallet grouping.
type PieceMetaKind int

const (
	// PieceUntracked means the box has no usable piece metadata and is
	// grouped by its computed pallet index.
	PieceUntracked PieceMetaKind = iota
	// PieceExplicitPallet means the box declares the pallet it sits on.
	PieceExplicitPallet
	// PieceLoose means the box is not palletized and consumes no slot.
	PieceLoose
)

// PieceMeta is the parsed form of the free-form piece metadata blob that
// scanners attach to a box QR code.
type PieceMeta struct {
	Kind         PieceMetaKind
	PalletNumber int
}

// rawPieceMeta mirrors the JSON blob written by the intake scanners.
type rawPieceMeta struct {
	PalletNumber *int  `json:"palletNumber"`
	Loose        *bool `json:"loose"`
}

// ParsePieceMeta parses a piece metadata blob. Malformed or empty input
// never fails; it degrades to PieceUntracked so that a bad scan still
// counts as one box on its computed pallet.
func ParsePieceMeta(raw string) PieceMeta {
	if raw == "" {
		return PieceMeta{Kind: PieceUntracked}
	}

	var parsed rawPieceMeta
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return PieceMeta{Kind: PieceUntracked}
	}

	if parsed.Loose != nil && *parsed.Loose {
		return PieceMeta{Kind: PieceLoose}
	}

	if parsed.PalletNumber != nil && *parsed.PalletNumber > 0 {
		return PieceMeta{Kind: PieceExplicitPallet, PalletNumber: *parsed.PalletNumber}
	}

	return PieceMeta{Kind: PieceUntracked}
}
