// Web service for KenKen puzzles: clients post puzzle
// definitions and get back stored ids, current candidate states,
// and solutions.  Stored puzzles live in the storage layer; the
// stateless /api/solve endpoint needs no storage at all.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/sdjespersen/kenken/puzzle"
	"github.com/sdjespersen/kenken/storage"
)

func main() {
	// establish the storage connections
	cacheId, databaseId, err := storage.Connect()
	if err != nil {
		log.Fatal(err)
	}
	defer storage.Close()
	log.Printf("Connected to cache at %q.", cacheId)
	log.Printf("Connected to database at %q.", databaseId)

	http.HandleFunc("/api/solve", guard(solveHandler))
	http.HandleFunc("/api/puzzles", guard(puzzlesHandler))
	http.HandleFunc("/api/puzzles/", guard(puzzleHandler))

	// Heroku environment port sensing
	port := os.Getenv("PORT")
	if port == "" {
		// running locally in dev mode
		port = "localhost:8080"
	} else {
		// running as a true server
		port = ":" + port
	}

	log.Printf("Listening on %s...", port)
	err = http.ListenAndServe(port, nil)
	if err != nil {
		log.Fatal("Listener failure: ", err)
	}
}

// guard wraps a handler with request tracing and a recovery for
// storage panics, which turn into 500 responses rather than
// killing the server.
func guard(handler func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Storage failure on %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "storage failure", http.StatusInternalServerError)
			}
		}()
		log.Printf("Handling %s %s...", r.Method, r.URL.Path)
		handler(w, r)
	}
}

/*

stateless solving

*/

// solveHandler solves a posted puzzle without storing it.  The
// response is the solve result alone, not the puzzle state.
func solveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s, e := puzzle.ReadSummary(r.Body)
	if e != nil {
		writeBadRequest(w, e)
		log.Printf("Summary decoding failed, returned error.")
		return
	}
	p, e := puzzle.New(s)
	if e != nil {
		writeBadRequest(w, e)
		log.Printf("Puzzle creation failed, returned error.")
		return
	}
	p.SolveHandler(w, r)
	log.Printf("Returned solve result.")
}

/*

stored puzzles

*/

// newPuzzleResponse is the response to a puzzle creation: the
// stored id plus the freshly propagated state.
type newPuzzleResponse struct {
	PuzzleId string       `json:"puzzleId"`
	State    puzzle.State `json:"state"`
}

// puzzlesHandler creates and stores a puzzle from a posted
// definition, responding with the stored id and initial state.
func puzzlesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s, e := puzzle.ReadSummary(r.Body)
	if e != nil {
		writeBadRequest(w, e)
		log.Printf("Summary decoding failed, returned error.")
		return
	}
	p, e := puzzle.New(s)
	if e != nil {
		writeBadRequest(w, e)
		log.Printf("Puzzle creation failed, returned error.")
		return
	}
	id := storage.SavePuzzle(s)
	writeOK(w, newPuzzleResponse{PuzzleId: id, State: p.State()})
	log.Printf("Stored puzzle %q, returned state.", id)
}

// puzzleHandler serves the per-puzzle GET routes:
//
//	/api/puzzles/{id}           the current candidate state
//	/api/puzzles/{id}/summary   the stored definition
//	/api/puzzles/{id}/solve     the (cached) solve result
//	/api/puzzles/{id}/solutions all solutions
func puzzleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, op := splitPuzzlePath(r.URL.Path)
	s, ok := storage.LoadPuzzle(id)
	if !ok {
		http.Error(w, "no such puzzle", http.StatusNotFound)
		log.Printf("No puzzle %q, returned not found.", id)
		return
	}
	p, e := puzzle.New(s)
	if e != nil {
		// stored puzzles were validated on the way in
		panic(e)
	}
	switch op {
	case "":
		p.StateHandler(w, r)
		log.Printf("Returned state of puzzle %q.", id)
	case "summary":
		p.SummaryHandler(w, r)
		log.Printf("Returned summary of puzzle %q.", id)
	case "solve":
		result, cached := storage.LoadSolution(id)
		if !cached {
			result = p.Solve()
			storage.SaveSolution(id, result)
		}
		writeOK(w, result)
		log.Printf("Returned solve result for puzzle %q (cached: %v).", id, cached)
	case "solutions":
		p.SolutionsHandler(w, r)
		log.Printf("Returned solutions of puzzle %q.", id)
	default:
		http.Error(w, "no such operation", http.StatusNotFound)
		log.Printf("Unknown operation %q, returned not found.", op)
	}
}

// splitPuzzlePath splits a per-puzzle path into the puzzle id
// and the operation suffix, which is empty for the state route.
func splitPuzzlePath(path string) (id, op string) {
	rest := strings.TrimPrefix(path, "/api/puzzles/")
	id = rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		id, op = rest[:i], rest[i+1:]
	}
	return
}

/*

response helpers

*/

func writeOK(w http.ResponseWriter, obj interface{}) {
	writeJSON(w, obj, http.StatusOK)
}

func writeBadRequest(w http.ResponseWriter, e error) {
	if err, ok := e.(puzzle.Error); ok {
		writeJSON(w, err, http.StatusBadRequest)
		return
	}
	http.Error(w, e.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, obj interface{}, status int) {
	bytes, e := json.Marshal(obj)
	if e != nil {
		http.Error(w, e.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}
