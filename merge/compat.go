package merge

import (
	"bytes"

	"github.com/mctools/mcpl-go/header"
)

// CanMerge reports whether two headers describe byte-identical particle
// records and carry identical metadata, everything but their particle
// counts and cumulative statistics (§4.7), mirroring
// mcpl_actual_can_merge's strict field-by-field comparison.
func CanMerge(a, b *header.Header) bool {
	if a.SrcName != b.SrcName {
		return false
	}
	if a.UserFlags != b.UserFlags || a.Polarisation != b.Polarisation || a.SinglePrec != b.SinglePrec {
		return false
	}
	if a.UniversalPdg != b.UniversalPdg {
		return false
	}
	if a.UniversalWeightSet != b.UniversalWeightSet || a.UniversalWeight != b.UniversalWeight {
		return false
	}
	if a.Endian != b.Endian {
		return false
	}
	if a.ParticleSize() != b.ParticleSize() {
		return false
	}

	if len(a.Comments) != len(b.Comments) {
		return false
	}
	for i := range a.Comments {
		if a.Comments[i] != b.Comments[i] {
			return false
		}
	}

	if len(a.Blobs) != len(b.Blobs) {
		return false
	}
	for i := range a.Blobs {
		if a.Blobs[i].Key != b.Blobs[i].Key || !bytes.Equal(a.Blobs[i].Data, b.Blobs[i].Data) {
			return false
		}
	}

	return true
}
