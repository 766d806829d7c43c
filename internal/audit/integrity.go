package audit

import "context"

type HashMismatch struct {
	EventID      string
	Position     int
	ExpectedHash string
	ActualHash   string
}

type ChainBreak struct {
	EventID              string
	Position             int
	ExpectedPreviousHash string
	ActualPreviousHash   string
}

// IntegrityReport is the result of walking the whole chain and checking
// every event's self-hash plus every link's previous_hash pointer.
type IntegrityReport struct {
	Valid          bool
	TotalEvents    int
	HashMismatches []HashMismatch
	ChainBreaks    []ChainBreak
	EventTypes     []EventType
	EntityTypes    []string
}

// VerifyIntegrity never raises during normal operation — a failed check is
// reported in the result, not returned as an error. The error return is
// reserved for storage failures that prevent the check from running.
func (s *Service) VerifyIntegrity(ctx context.Context) (IntegrityReport, error) {
	events, err := s.loadSorted(ctx)
	if err != nil {
		return IntegrityReport{}, err
	}

	report := IntegrityReport{Valid: true, TotalEvents: len(events)}
	if len(events) == 0 {
		return report, nil
	}

	for i, e := range events {
		ok, err := e.verifyHash()
		if err != nil {
			return IntegrityReport{}, err
		}
		if !ok {
			expected, _ := e.calculateHash()
			report.Valid = false
			report.HashMismatches = append(report.HashMismatches, HashMismatch{
				EventID:      e.ID,
				Position:     i,
				ExpectedHash: expected,
				ActualHash:   e.CurrentHash,
			})
		}
	}

	previousHash := ""
	for i, e := range events {
		if e.PreviousHash != previousHash {
			report.Valid = false
			report.ChainBreaks = append(report.ChainBreaks, ChainBreak{
				EventID:              e.ID,
				Position:             i,
				ExpectedPreviousHash: previousHash,
				ActualPreviousHash:   e.PreviousHash,
			})
		}
		previousHash = e.CurrentHash
	}

	report.EventTypes = distinctEventTypes(events)
	report.EntityTypes = distinctEntityTypes(events)
	return report, nil
}

func distinctEventTypes(events []Event) []EventType {
	seen := map[EventType]struct{}{}
	var out []EventType
	for _, e := range events {
		if _, ok := seen[e.Type]; !ok {
			seen[e.Type] = struct{}{}
			out = append(out, e.Type)
		}
	}
	return out
}

func distinctEntityTypes(events []Event) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, e := range events {
		if _, ok := seen[e.EntityType]; !ok {
			seen[e.EntityType] = struct{}{}
			out = append(out, e.EntityType)
		}
	}
	return out
}
