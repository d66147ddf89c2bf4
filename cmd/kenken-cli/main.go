// Command-line client for KenKen puzzle utilities.
//
// With file arguments, each file is read as a JSON puzzle
// definition, solved, and the solution (or unsolvable verdict)
// printed.  With no arguments, an interactive listener reads
// commands from standard input; run 'help' there for the
// command set.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/sdjespersen/kenken/puzzle"
	"github.com/sdjespersen/kenken/storage"
)

func main() {
	// file arguments mean batch mode: solve each and exit
	if len(os.Args) > 1 {
		exitCode := 0
		for _, path := range os.Args[1:] {
			if err := solveFile(os.Stdout, path); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				exitCode = 1
			}
		}
		os.Exit(exitCode)
	}

	// catch signals
	shutdownOnSignal()

	// serve
	err := listener(os.Stdout, os.Stdin)
	if err != nil {
		log.Printf("CLI failure: %v", err)
		shutdown(listenerFailureShutdown)
	}
	shutdown(normalShutdown)
}

// solveFile reads a puzzle definition from a file and prints its
// first solution, or reports that there is none.
func solveFile(out io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	s, err := puzzle.ReadSummary(f)
	if err != nil {
		return err
	}
	p, err := puzzle.New(s)
	if err != nil {
		return err
	}
	result := p.Solve()
	if !result.Solved {
		fmt.Fprintf(out, "%s: no solution\n", path)
		return nil
	}
	fmt.Fprintf(out, "%s:\n%s", path, result.Solution)
	return nil
}

/*

CLI listener

*/

type request struct {
	inline  string
	command string
	args    []string
}

// listener reads lines and dispatches them to handlers
func listener(out io.Writer, in io.Reader) error {
	// if we are on a terminal, we do prompting
	// (see http://stackoverflow.com/questions/22744443/ for source)
	prompt := false
	if f, ok := out.(*os.File); ok {
		if stat, _ := f.Stat(); (stat.Mode() & os.ModeCharDevice) != 0 {
			prompt = true
		}
	}

	input := make([]byte, 4096)
	for {
		if prompt {
			fmt.Fprintf(out, "kenken> ")
		}
		n, err := in.Read(input)
		switch err {
		case nil:
			r := &request{inline: strings.Trim(string(input[:n]), " \t\r\n")}
			args := strings.Split(r.inline, " ")
			r.command = strings.ToLower(args[0])
			switch r.command {
			case "":
				continue
			case "quit":
				fallthrough
			case "exit":
				return nil
			}
			for _, arg := range args[1:] {
				if len(arg) > 0 {
					r.args = append(r.args, arg)
				}
			}
			dispatchCommand(out, r)
		case io.EOF:
			// ignore any input before the EOF
			if prompt {
				fmt.Fprintf(out, " (EOF)\n")
			}
			return nil
		default:
			if prompt {
				fmt.Fprintf(out, " (read error)\n")
			}
			return err
		}
	}
}

// command dispatching
type commandInfo struct {
	command     string
	argInfo     string
	description string
	handler     func(io.Writer, *request)
}

// the command dispatch info is sorted for easy usage printing,
// and then hashed for rapid dispatching
var (
	dispatchInfo  []commandInfo
	dispatchTable map[string]*commandInfo
)

func init() {
	dispatchInfo = []commandInfo{
		{"flush", "", "flush the storage cache", flushHandler},
		{"help", "", "show this command list", helpHandler},
		{"load", "file", "load a puzzle definition file", loadHandler},
		{"show", "", "show the current candidate state", showHandler},
		{"solutions", "", "find all solutions", solutionsHandler},
		{"solve", "", "find the first solution", solveHandler},
		{"summary", "", "show the current puzzle definition", summaryHandler},
	}
	dispatchTable = make(map[string]*commandInfo, len(dispatchInfo))
	for i := range dispatchInfo {
		dispatchTable[dispatchInfo[i].command] = &dispatchInfo[i]
	}
}

func dispatchCommand(w io.Writer, r *request) {
	defer func() {
		if err := recover(); err != nil {
			errorHandler(err, w, r)
		}
	}()

	ci := dispatchTable[r.command]
	if ci == nil {
		usageHandler(fmt.Sprintf("%q is not a known command", r.command), w, r)
	} else {
		ci.handler(w, r)
	}
}

/*

request handlers

*/

// client state: the currently loaded puzzle
var (
	curPath    string
	curSummary *puzzle.Summary
	curPuzzle  *puzzle.Puzzle
)

func loadHandler(w io.Writer, r *request) {
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires a file argument", r.command), w, r)
		return
	}
	path := r.args[0]
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(w, "Load failed: %v\n", err)
		return
	}
	defer f.Close()
	s, err := puzzle.ReadSummary(f)
	if err != nil {
		fmt.Fprintf(w, "Load failed: %v\n", err)
		return
	}
	p, err := puzzle.New(s)
	if err != nil {
		fmt.Fprintf(w, "Load failed: %v\n", err)
		return
	}
	curPath, curSummary, curPuzzle = path, s, p
	fmt.Fprintf(w, "Loaded %dx%d puzzle from %q.\n", s.Size, s.Size, path)
}

func showHandler(w io.Writer, r *request) {
	if curPuzzle == nil {
		fmt.Fprintf(w, "No puzzle loaded; use 'load' first.\n")
		return
	}
	fmt.Fprintf(w, "%s%s", curPuzzle.ValuesString(true), curPuzzle.ErrorsString())
}

func summaryHandler(w io.Writer, r *request) {
	if curSummary == nil {
		fmt.Fprintf(w, "No puzzle loaded; use 'load' first.\n")
		return
	}
	fmt.Fprintf(w, "Puzzle from %q: side length %d, %d cages\n",
		curPath, curSummary.Size, len(curSummary.Cages))
	for i, cg := range curSummary.Cages {
		op := string(cg.Operation)
		if op == "" {
			op = "given"
		}
		fmt.Fprintf(w, "  cage %d: %d%s, cells %v\n", i+1, cg.Result, op, cg.Cells)
	}
}

func solveHandler(w io.Writer, r *request) {
	if curPuzzle == nil {
		fmt.Fprintf(w, "No puzzle loaded; use 'load' first.\n")
		return
	}
	result := curPuzzle.Solve()
	if !result.Solved {
		fmt.Fprintf(w, "No solution.\n")
		return
	}
	fmt.Fprintf(w, "%s", result.Solution)
	if n := len(result.Solution.Choices); n > 0 {
		fmt.Fprintf(w, "(%d guessed cells)\n", n)
	}
}

func solutionsHandler(w io.Writer, r *request) {
	if curPuzzle == nil {
		fmt.Fprintf(w, "No puzzle loaded; use 'load' first.\n")
		return
	}
	solutions := curPuzzle.Solutions()
	switch len(solutions) {
	case 0:
		fmt.Fprintf(w, "No solutions.\n")
	case 1:
		fmt.Fprintf(w, "1 solution:\n%s", &solutions[0])
	default:
		fmt.Fprintf(w, "%d solutions:\n", len(solutions))
		for i := range solutions {
			fmt.Fprintf(w, "#%d:\n%s", i+1, &solutions[i])
		}
	}
}

func flushHandler(w io.Writer, r *request) {
	if err := connectStorage(); err != nil {
		fmt.Fprintf(w, "Storage connection failed: %v\n", err)
		return
	}
	storage.FlushCache()
	fmt.Fprintf(w, "Cache flushed.\n")
}

func helpHandler(w io.Writer, r *request) {
	fmt.Fprintf(w, "Commands:\n")
	for _, ci := range dispatchInfo {
		fmt.Fprintf(w, "    %9s %-5s\t%s\n", ci.command, ci.argInfo, ci.description)
	}
	fmt.Fprintf(w, "  and 'quit' or EOF to exit.\n")
}

func usageHandler(msg string, w io.Writer, r *request) {
	fmt.Fprintf(w, "Error: %s\n", msg)
	helpHandler(w, r)
}

func errorHandler(err interface{}, w io.Writer, r *request) {
	fmt.Fprintf(w, "Panic executing %q: %v\n", r.inline, err)
	log.Printf("Error executing %q: %v\n", r.inline, err)
}

/*

storage

*/

// the storage connection is only needed for cache commands, so
// it's made on first use
var storageConnected bool

func connectStorage() error {
	if storageConnected {
		return nil
	}
	cacheId, databaseId, err := storage.Connect()
	if err != nil {
		return err
	}
	log.Printf("Connected to cache at %q.", cacheId)
	log.Printf("Connected to database at %q.", databaseId)
	storageConnected = true
	return nil
}

/*

shutdown handling

*/

type shutdownCause int

const (
	unknownShutdown = iota
	normalShutdown
	runtimeFailureShutdown
	caughtSignalShutdown
	listenerFailureShutdown
)

// for testing, allow alternate forms of shutdown
var alternateShutdown func(reason shutdownCause)

// shutdown: process exit with logging.
func shutdown(reason shutdownCause) {
	// close down the storage connections
	if storageConnected {
		storage.Close()
	}

	// for testing: run alternateShutdown instead, if defined
	if alternateShutdown != nil {
		alternateShutdown(reason)
		panic(reason) // shouldn't get here
	}

	// log reason for shutdown and exit
	switch reason {
	case unknownShutdown:
		log.Fatal("Exiting: no reason given.")
	case normalShutdown:
		log.Print("Exiting: normal shutdown.")
		os.Exit(0)
	case runtimeFailureShutdown:
		log.Fatal("Exiting: runtime failure.")
	case caughtSignalShutdown:
		log.Fatal("Exiting: caught signal.")
	case listenerFailureShutdown:
		log.Fatal("Exiting: received EOF.")
	default:
		log.Fatal("Exiting: unknown cause.")
	}
}

// shutdownOnSignal: catch signals and exit.
func shutdownOnSignal() {
	// based on example in os.signal godoc
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt) // die on all catchable signals
	go func() {
		s := <-c
		log.Printf("Received OS-level signal: %v", s)
		shutdown(caughtSignalShutdown)
	}()
}
