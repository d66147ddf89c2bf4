package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx"

	"github.com/sdjespersen/kenken/puzzle"
)

/*

puzzle signatures

*/

// Signature returns the storage id of a puzzle definition: the
// hex form of the SHA-256 of its canonical JSON encoding.  The
// same definition always stores under the same id, so saving a
// puzzle twice is a no-op the second time.
func Signature(s *puzzle.Summary) string {
	bytes, err := json.Marshal(s)
	if err != nil {
		// summaries are plain data; this can't happen
		panic(fmt.Errorf("Couldn't encode summary for signature: %v", err))
	}
	sum := sha256.Sum256(bytes)
	return hex.EncodeToString(sum[:])
}

/*

stored puzzles

*/

// cache keys are the signature with a type prefix, so puzzles
// and solutions for the same puzzle can coexist
const (
	puzzleKeyPrefix   = "KKP:"
	solutionKeyPrefix = "KKS:"
)

// a puzzleEntry is the stored form of a puzzle definition
type puzzleEntry struct {
	puzzleId string
	summary  *puzzle.Summary
}

// SavePuzzle stores a puzzle definition and returns its id.
// Storing an already-stored puzzle just returns the existing id.
func SavePuzzle(s *puzzle.Summary) string {
	pe := puzzleEntry{puzzleId: Signature(s)}
	if pe.cacheLoad() {
		return pe.puzzleId
	}
	pe.summary = s
	pe.databaseInsert()
	pe.cacheInsert()
	return pe.puzzleId
}

// LoadPuzzle fetches a stored puzzle definition by id.  The
// second return value reports whether the id was found.
func LoadPuzzle(id string) (*puzzle.Summary, bool) {
	pe := puzzleEntry{puzzleId: id}
	if pe.cacheLoad() {
		return pe.summary, true
	}
	if pe.databaseLoad() {
		pe.cacheInsert()
		return pe.summary, true
	}
	return nil, false
}

// cacheLoad: load the entry from the cache.  Returns false if
// the entry isn't cached.
func (pe *puzzleEntry) cacheLoad() (found bool) {
	body := func(tx redis.Conn) error {
		bytes, err := redis.Bytes(tx.Do("GET", puzzleKeyPrefix+pe.puzzleId))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Cache failure on puzzle %q load: %v", pe.puzzleId, err)
		}
		var s puzzle.Summary
		if err := json.Unmarshal(bytes, &s); err != nil {
			return fmt.Errorf("Corrupt cache entry for puzzle %q: %v", pe.puzzleId, err)
		}
		pe.summary, found = &s, true
		return nil
	}
	rdExecute(body)
	return
}

// cacheInsert: insert the entry into the cache.
func (pe *puzzleEntry) cacheInsert() {
	bytes, err := json.Marshal(pe.summary)
	if err != nil {
		panic(fmt.Errorf("Couldn't encode puzzle %q for cache: %v", pe.puzzleId, err))
	}
	body := func(tx redis.Conn) error {
		if _, err := tx.Do("SET", puzzleKeyPrefix+pe.puzzleId, bytes); err != nil {
			return fmt.Errorf("Cache failure on puzzle %q insert: %v", pe.puzzleId, err)
		}
		return nil
	}
	rdExecute(body)
}

// databaseLoad: load the entry from the database.  Returns false
// if the entry isn't stored.
func (pe *puzzleEntry) databaseLoad() (found bool) {
	body := func(tx *pgx.Tx) error {
		var text string
		err := tx.QueryRow(
			"SELECT summary FROM puzzles WHERE puzzleId = $1",
			pe.puzzleId).Scan(&text)
		if err == pgx.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Database failure on puzzle %q load: %v", pe.puzzleId, err)
		}
		var s puzzle.Summary
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return fmt.Errorf("Corrupt database entry for puzzle %q: %v", pe.puzzleId, err)
		}
		pe.summary, found = &s, true
		return nil
	}
	pgExecute(body)
	return
}

// databaseInsert: insert the entry into the database.  Because
// ids are content-derived, a conflicting row is the same puzzle,
// so conflicts are ignored.
func (pe *puzzleEntry) databaseInsert() {
	bytes, err := json.Marshal(pe.summary)
	if err != nil {
		panic(fmt.Errorf("Couldn't encode puzzle %q for database: %v", pe.puzzleId, err))
	}
	body := func(tx *pgx.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO puzzles (puzzleId, size, summary, created) "+
				"VALUES ($1, $2, $3, $4) ON CONFLICT (puzzleId) DO NOTHING",
			pe.puzzleId, pe.summary.Size, string(bytes), time.Now())
		if err != nil {
			return fmt.Errorf("Database failure on puzzle %q insert: %v", pe.puzzleId, err)
		}
		return nil
	}
	pgExecute(body)
}

/*

stored solutions

*/

// a solutionEntry is the stored form of a solve result
type solutionEntry struct {
	puzzleId string
	result   *puzzle.SolveResult
}

// SaveSolution stores the solve result for a stored puzzle.
// Solving is deterministic, so a conflicting row holds the same
// result and the insert can safely do nothing on conflict.
func SaveSolution(id string, result puzzle.SolveResult) {
	se := solutionEntry{puzzleId: id, result: &result}
	se.databaseInsert()
	se.cacheInsert()
}

// LoadSolution fetches the stored solve result for a puzzle id.
// The second return value reports whether a result was found.
func LoadSolution(id string) (puzzle.SolveResult, bool) {
	se := solutionEntry{puzzleId: id}
	if se.cacheLoad() {
		return *se.result, true
	}
	if se.databaseLoad() {
		se.cacheInsert()
		return *se.result, true
	}
	return puzzle.SolveResult{}, false
}

func (se *solutionEntry) cacheLoad() (found bool) {
	body := func(tx redis.Conn) error {
		bytes, err := redis.Bytes(tx.Do("GET", solutionKeyPrefix+se.puzzleId))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Cache failure on solution %q load: %v", se.puzzleId, err)
		}
		var r puzzle.SolveResult
		if err := json.Unmarshal(bytes, &r); err != nil {
			return fmt.Errorf("Corrupt cache entry for solution %q: %v", se.puzzleId, err)
		}
		se.result, found = &r, true
		return nil
	}
	rdExecute(body)
	return
}

func (se *solutionEntry) cacheInsert() {
	bytes, err := json.Marshal(se.result)
	if err != nil {
		panic(fmt.Errorf("Couldn't encode solution %q for cache: %v", se.puzzleId, err))
	}
	body := func(tx redis.Conn) error {
		if _, err := tx.Do("SET", solutionKeyPrefix+se.puzzleId, bytes); err != nil {
			return fmt.Errorf("Cache failure on solution %q insert: %v", se.puzzleId, err)
		}
		return nil
	}
	rdExecute(body)
}

func (se *solutionEntry) databaseLoad() (found bool) {
	body := func(tx *pgx.Tx) error {
		var text string
		err := tx.QueryRow(
			"SELECT result FROM solutions WHERE puzzleId = $1",
			se.puzzleId).Scan(&text)
		if err == pgx.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Database failure on solution %q load: %v", se.puzzleId, err)
		}
		var r puzzle.SolveResult
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			return fmt.Errorf("Corrupt database entry for solution %q: %v", se.puzzleId, err)
		}
		se.result, found = &r, true
		return nil
	}
	pgExecute(body)
	return
}

func (se *solutionEntry) databaseInsert() {
	bytes, err := json.Marshal(se.result)
	if err != nil {
		panic(fmt.Errorf("Couldn't encode solution %q for database: %v", se.puzzleId, err))
	}
	body := func(tx *pgx.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO solutions (puzzleId, solved, result, created) "+
				"VALUES ($1, $2, $3, $4) ON CONFLICT (puzzleId) DO NOTHING",
			se.puzzleId, se.result.Solved, string(bytes), time.Now())
		if err != nil {
			return fmt.Errorf("Database failure on solution %q insert: %v", se.puzzleId, err)
		}
		return nil
	}
	pgExecute(body)
}
