package segindex

import (
	"github.com/onurtuna/ursavr/internal/poolset"
	"github.com/onurtuna/ursavr/internal/record"
)

// Cursor is the active-pool position the writer should resume from after
// a rebuild: the offset just past the latest record in the pool that holds
// the most recent record overall.
type Cursor struct {
	PoolIdx uint16
	Offset  int64
}

// Rebuild scans every pool in ring order and inserts every recovered
// record into idx. It returns the cursor the writer should resume
// appending from and the total number of records dropped to
// CRC/structural corruption across all pools (logged as one summary
// line, not one per record, since a damaged pool can carry thousands of
// bad headers and a line each would flood the log).
func Rebuild(idx *Index, pools []*poolset.Pool) (Cursor, int, error) {
	var (
		cursor       Cursor
		haveLatest   bool
		latestStart  int64
		latestOffset int64
		corrupted    int
	)

	for _, p := range pools {
		result, err := record.Scan(p, p.Size())
		if err != nil {
			return Cursor{}, corrupted, err
		}
		corrupted += result.Corrupted

		for _, se := range result.Entries {
			idx.Insert(Entry{
				CameraID:    se.Meta.CameraID,
				StartUnixNs: se.Meta.StartUnixNs,
				DurationMs:  se.Meta.DurationMs,
				PoolIdx:     p.Idx(),
				Offset:      se.Offset,
				BodyLen:     se.Meta.BodyLen,
			})

			end := se.Offset + record.HeaderSize + int64(se.Meta.BodyLen)
			isNewLatest := !haveLatest ||
				se.Meta.StartUnixNs > latestStart ||
				(se.Meta.StartUnixNs == latestStart && se.Offset > latestOffset)

			if isNewLatest {
				haveLatest = true
				latestStart = se.Meta.StartUnixNs
				latestOffset = se.Offset
				cursor = Cursor{PoolIdx: p.Idx(), Offset: end}
			}
		}
	}

	return cursor, corrupted, nil
}
