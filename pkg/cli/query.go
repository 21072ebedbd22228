package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/songbook/pkg/cli/internal/parse"
	"github.com/getmockd/songbook/pkg/graphql"
)

type queryFlags struct {
	variables     string
	operationName string
	headers       []string
	pretty        bool
	timeout       time.Duration
}

func (a *app) newQueryCmd() *cobra.Command {
	f := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "query <endpoint> <query|@file>",
		Short: "Send a GraphQL document to a running endpoint",
		Example: `  # Simple query
  songbook query http://localhost:5000/graphql "{ authors { id name } }"

  # Query with variables
  songbook query http://localhost:5000/graphql \
    'query($id: Int) { author(id: $id) { name songs { name } } }' \
    -v '{"id": 1}'

  # Query from file
  songbook query http://localhost:5000/graphql @query.graphql`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.OutOrStdout(), args[0], args[1], f)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.variables, "variables", "v", "", "JSON object of variables")
	fs.StringVarP(&f.operationName, "operation", "o", "", "Operation name for multi-operation documents")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "Additional header (key:value), repeatable")
	fs.BoolVar(&f.pretty, "pretty", true, "Pretty print output")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "Request timeout")

	return cmd
}

func runQuery(out io.Writer, endpoint, query string, f *queryFlags) error {
	if strings.HasPrefix(query, "@") {
		data, err := os.ReadFile(query[1:])
		if err != nil {
			return fmt.Errorf("failed to read query file: %w", err)
		}
		query = string(data)
	}
	if strings.TrimSpace(query) == "" {
		return errors.New("query is empty")
	}

	var vars map[string]interface{}
	if f.variables != "" {
		if err := json.Unmarshal([]byte(f.variables), &vars); err != nil {
			return fmt.Errorf("invalid variables JSON: %w", err)
		}
	}

	headers, err := parse.Headers(f.headers)
	if err != nil {
		return err
	}

	body, err := json.Marshal(graphql.GraphQLRequest{
		Query:         query,
		OperationName: f.operationName,
		Variables:     vars,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: f.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if f.pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, respBody, "", "  "); err == nil {
			respBody = buf.Bytes()
		}
	}
	fmt.Fprintln(out, strings.TrimRight(string(respBody), "\n"))

	var result struct {
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &result); err == nil && len(result.Errors) > 0 {
		return fmt.Errorf("query returned %d error(s)", len(result.Errors))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("endpoint returned HTTP %d", resp.StatusCode)
	}
	return nil
}
