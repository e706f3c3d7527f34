package appointments

// nextSerial assigns the lowest serial number within capacity that is not
// held by a non-cancelled appointment. Serial numbers double as display
// ticket numbers and the queue ordering key, so allocation gap-fills into
// cancelled slots instead of incrementing past capacity.
//
// The caller's capacity check should make exhaustion unreachable, but the
// allocator verifies the bound independently.
func nextSerial(maxPatients int, activeSerials map[int]struct{}) (int, error) {
	serial := 1
	for {
		if serial > maxPatients {
			return 0, ErrSerialsExhausted
		}
		if _, used := activeSerials[serial]; !used {
			return serial, nil
		}
		serial++
	}
}
