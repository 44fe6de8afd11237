// Command msq is a scriptable client for the mining research API. It drives
// the same orchestrator as the dashboard and prints the resulting state.
//
// Usage:
//
//	msq                     Show help
//	msq status              Database status
//	msq list                All articles
//	msq search <query>      Search articles
//	msq populate            Insert the sample articles
//	msq ingest              Fetch new papers from arXiv
//	msq graph               Article graph summary
//	msq recs                Recommendations and the similarity feed
//	msq viz                 Visualization aggregates as text charts
//	msq insights            AI insights
//	msq star <id>           Add an article to the collection
//	msq unstar <id>         Remove an article from the collection
//	msq events              Event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `msq - mining research API client

Usage:
  msq <command> [flags]

Commands:
  status      Database status and article count
  list        All articles
  search      Search articles by title or abstract
  populate    Insert the sample articles
  ingest      Fetch new papers from arXiv
  graph       Article graph summary
  recs        Recommendations and the similarity feed
  viz         Visualization aggregates as text charts
  insights    AI insights
  star        Add an article to the collection
  unstar      Remove an article from the collection
  events      JSONL event log viewer

Environment:
  MINESCOPE_API_URL    Backend base URL (default: http://localhost:5000)
  MINESCOPE_USERNAME   Username for login
  MINESCOPE_PASSWORD   Password for login

Run 'msq <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "status":
		runStatus()
	case "list":
		runList()
	case "search":
		runSearch()
	case "populate":
		runPopulate()
	case "ingest":
		runIngest()
	case "graph":
		runGraph()
	case "recs":
		runRecs()
	case "viz":
		runViz()
	case "insights":
		runInsights()
	case "star":
		runStar(true)
	case "unstar":
		runStar(false)
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "msq: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
