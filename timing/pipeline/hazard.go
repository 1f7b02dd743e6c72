package pipeline

// HazardUnit detects read-after-write hazards between decode and older
// in-flight instructions. The pipeline has no forwarding and never stalls,
// so a detected hazard means decode reads a stale value. The unit only
// observes; it never changes what decode reads.
type HazardUnit struct{}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// StaleSources returns the source registers of the decoding instruction
// that an older, not yet written back instruction is going to write.
func (h *HazardUnit) StaleSources(decode *Latch, inFlight ...*Latch) []uint8 {
	if !decode.Valid {
		return nil
	}

	info := decode.Inst.Info()
	var sources []uint8
	if info.ReadsRs1 {
		sources = append(sources, decode.Inst.Rs1)
	}
	if info.ReadsRs2 && !(info.ReadsRs1 && decode.Inst.Rs2 == decode.Inst.Rs1) {
		sources = append(sources, decode.Inst.Rs2)
	}

	var stale []uint8
	for _, reg := range sources {
		for _, older := range inFlight {
			if h.pendingWrite(older, reg) {
				stale = append(stale, reg)
				break
			}
		}
	}

	return stale
}

// pendingWrite reports whether the latch will commit a value to reg.
func (h *HazardUnit) pendingWrite(l *Latch, reg uint8) bool {
	if !l.Valid || l.FetchErr != nil {
		return false
	}

	info := l.Inst.Info()
	if info.WritesRd && l.Inst.Rd == reg {
		return true
	}
	return info.WritesBase && l.Inst.BaseReg() == reg
}
