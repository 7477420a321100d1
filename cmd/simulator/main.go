package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
)

const defaultPassword = "simulator-password"

var sampleTexts = []string{
	"just setting up my account",
	"coffee first, then code",
	"shipping on a friday, wish me luck",
	"anyone else's build green on the first try?",
	"reading about secondary indexes again",
	"hello world",
	"lunch was great today",
	"tabs vs spaces, go",
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "populate":
		populateCmd(apiURL, args)
	case "timeline":
		timelineCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Simulator - Development tool for seeding users and tweets

USAGE:
  simulator <command> [options]

COMMANDS:
  populate  Sign up fake users and post tweets as each of them
  timeline  Print a user's timeline, newest first
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Create 5 users with 3 tweets each
  simulator populate

  # Create 20 users with 10 tweets each
  simulator populate --users=20 --tweets=10

  # Show alice's timeline
  simulator timeline --username=alice`)
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	users := fs.Int("users", 5, "Number of fake users to create")
	tweets := fs.Int("tweets", 3, "Number of tweets per user")
	fs.Parse(args)

	if *users < 1 || *tweets < 0 {
		fmt.Println("Error: --users must be at least 1 and --tweets must not be negative")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	fmt.Println("=== Simulator: Populate ===")
	fmt.Println()

	for i := 1; i <= *users; i++ {
		suffix := uuid.New().String()[:8]
		username := fmt.Sprintf("sim_%s", suffix)
		email := fmt.Sprintf("%s@example.com", username)

		if _, err := client.Signup(username, email, defaultPassword); err != nil {
			fmt.Printf("  [%d/%d] FAILED to sign up: %v\n", i, *users, err)
			os.Exit(1)
		}

		// Log in through the form endpoint the way a browser client does
		token, err := client.Login(username, defaultPassword)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to log in: %v\n", i, *users, err)
			os.Exit(1)
		}

		for j := 0; j < *tweets; j++ {
			text := sampleTexts[rng.Intn(len(sampleTexts))]
			if _, err := client.PostTweet(token, text); err != nil {
				fmt.Printf("  [%d/%d] FAILED to post tweet: %v\n", i, *users, err)
				os.Exit(1)
			}
		}

		mine, err := client.MyTweets(token)
		if err != nil {
			fmt.Printf("Warning: failed to list tweets for %s: %v\n", username, err)
		}
		fmt.Printf("  [%d/%d] %s created with %d tweets\n", i, *users, username, len(mine))
	}

	fmt.Println()
	fmt.Printf("Done. Log in with any sim_ user and password %q\n", defaultPassword)
}

func timelineCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("timeline", flag.ExitOnError)
	username := fs.String("username", "", "Username whose timeline to print (required)")
	fs.Parse(args)

	if *username == "" {
		fmt.Println("Error: --username is required")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	tweets, err := client.Timeline(*username)
	if err != nil {
		fmt.Printf("Failed to fetch timeline: %v\n", err)
		os.Exit(1)
	}

	if len(tweets) == 0 {
		fmt.Printf("%s has not tweeted yet\n", *username)
		return
	}

	for _, t := range tweets {
		fmt.Printf("%s  @%s: %s\n", t.CreatedAt, t.Username, t.Text)
	}
}
