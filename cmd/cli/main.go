package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const version = "1.0.0"

var (
	serverAddr string
	namespace  string
	timeout    time.Duration
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	flag.StringVar(&serverAddr, "server", "http://localhost:8080", "flatnav server base URL")
	flag.StringVar(&namespace, "namespace", "default", "namespace to use")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	command := os.Args[1]

	switch command {
	case "insert":
		handleInsert(os.Args[2:])
	case "search":
		handleSearch(os.Args[2:])
	case "stats":
		handleStats(os.Args[2:])
	case "health":
		handleHealth(os.Args[2:])
	case "version":
		fmt.Printf("flatnav-cli version %s\n", version)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showUsage()
		os.Exit(1)
	}
}

type insertRequest struct {
	Namespace      string    `json:"namespace"`
	Label          uint64    `json:"label"`
	Vector         []float32 `json:"vector"`
	EfConstruction int       `json:"ef_construction,omitempty"`
}

type insertResponse struct {
	Success bool   `json:"success"`
	Label   uint64 `json:"label"`
	Error   string `json:"error,omitempty"`
}

func handleInsert(args []string) {
	fs := flag.NewFlagSet("insert", flag.ExitOnError)
	var (
		vectorStr = fs.String("vector", "", "vector as JSON array (required)")
		label     = fs.Uint64("label", 0, "integer label for the vector (required)")
		ef        = fs.Int("ef-construction", 0, "beam width at insert (0 = server default)")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "flatnav server base URL")
	fs.StringVar(&namespace, "namespace", namespace, "namespace")
	fs.Parse(args)

	if *vectorStr == "" {
		fmt.Println("Error: -vector is required")
		fs.Usage()
		os.Exit(1)
	}

	vector, err := parseVector(*vectorStr)
	if err != nil {
		fmt.Printf("Error parsing vector: %v\n", err)
		os.Exit(1)
	}

	req := insertRequest{
		Namespace:      namespace,
		Label:          *label,
		Vector:         vector,
		EfConstruction: *ef,
	}

	var resp insertResponse
	if err := post("/v1/vectors", req, &resp); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if !resp.Success {
		fmt.Printf("Insert failed: %s\n", resp.Error)
		os.Exit(1)
	}

	fmt.Printf("Inserted vector with label %d\n", resp.Label)
}

type searchRequest struct {
	Namespace string    `json:"namespace"`
	Vector    []float32 `json:"vector"`
	TopK      int       `json:"top_k"`
	EfSearch  int       `json:"ef_search,omitempty"`
}

type searchResult struct {
	Label    uint64  `json:"label"`
	Distance float32 `json:"distance"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

func handleSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var (
		queryVectorStr = fs.String("query", "", "query vector as JSON array (required)")
		k              = fs.Int("k", 10, "number of results to return")
		efSearch       = fs.Int("ef", 50, "beam width at query")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "flatnav server base URL")
	fs.StringVar(&namespace, "namespace", namespace, "namespace")
	fs.Parse(args)

	if *queryVectorStr == "" {
		fmt.Println("Error: -query is required")
		fs.Usage()
		os.Exit(1)
	}

	vector, err := parseVector(*queryVectorStr)
	if err != nil {
		fmt.Printf("Error parsing query vector: %v\n", err)
		os.Exit(1)
	}

	req := searchRequest{
		Namespace: namespace,
		Vector:    vector,
		TopK:      *k,
		EfSearch:  *efSearch,
	}

	var resp searchResponse
	if err := post("/v1/vectors/search", req, &resp); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	displaySearchResults(resp)
}

func displaySearchResults(resp searchResponse) {
	if resp.Error != "" {
		fmt.Printf("Search error: %s\n", resp.Error)
		os.Exit(1)
	}

	fmt.Printf("Found %d results\n\n", len(resp.Results))

	for i, result := range resp.Results {
		fmt.Printf("Result %d:\n", i+1)
		fmt.Printf("  Label:    %d\n", result.Label)
		fmt.Printf("  Distance: %.6f\n", result.Distance)
		fmt.Println()
	}
}

func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.StringVar(&serverAddr, "server", serverAddr, "flatnav server base URL")
	fs.Parse(args)

	var stats map[string]interface{}
	if err := get("/v1/stats", &stats); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Namespace Statistics ===")
	namespaces, _ := stats["namespaces"].([]interface{})
	for _, ns := range namespaces {
		b, _ := json.MarshalIndent(ns, "  ", "  ")
		fmt.Printf("  %s\n", b)
	}
}

func handleHealth(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	fs.StringVar(&serverAddr, "server", serverAddr, "flatnav server base URL")
	fs.Parse(args)

	var health map[string]interface{}
	if err := get("/v1/health", &health); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Status: %v\n", health["status"])
	fmt.Printf("Time:   %v\n", health["time"])

	if health["status"] != "ok" {
		os.Exit(1)
	}
}

func parseVector(s string) ([]float32, error) {
	var vector []float64
	if err := json.Unmarshal([]byte(s), &vector); err != nil {
		return nil, err
	}
	vector32 := make([]float32, len(vector))
	for i, v := range vector {
		vector32[i] = float32(v)
	}
	return vector32, nil
}

func post(path string, reqBody, respBody interface{}) error {
	client := &http.Client{Timeout: timeout}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(reqBody); err != nil {
		return err
	}

	resp, err := client.Post(serverAddr+path, "application/json", buf)
	if err != nil {
		return fmt.Errorf("failed to reach server at %s: %w", serverAddr, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, respBody)
}

func get(path string, respBody interface{}) error {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(serverAddr + path)
	if err != nil {
		return fmt.Errorf("failed to reach server at %s: %w", serverAddr, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, respBody)
}

func decodeResponse(resp *http.Response, respBody interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return json.Unmarshal(body, respBody)
}

func showUsage() {
	fmt.Println(strings.TrimLeft(`
flatnav CLI - client for the flatnav ANN graph server

Usage:
  flatnav-cli <command> [options]

Commands:
  insert          Insert a vector
  search          Search for similar vectors
  stats           Get namespace statistics
  health          Check server health
  version         Show version
  help            Show this help message

Options (given after the command):
  -server URL        Server base URL (default: http://localhost:8080)
  -namespace NAME    Namespace to use, insert and search only (default: default)

Requests time out after 30s; the timeout is not configurable.

Examples:

  # Insert a vector
  flatnav-cli insert -label 1 -vector '[0.1, 0.2, 0.3]'

  # Search for similar vectors
  flatnav-cli search -query '[0.15, 0.25, 0.35]' -k 10 -ef 50

  # Get namespace statistics
  flatnav-cli stats

  # Check server health
  flatnav-cli health

  # Use a custom server and namespace
  flatnav-cli search -server http://my-server:8080 -namespace production -query '[0.1, 0.2]'
`, "\n"))
}
