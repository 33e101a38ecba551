// Command pagewave fetches paginated JSON resources in batched waves
// and streams every page to stdout as NDJSON.
package main

func main() {
	Execute()
}
