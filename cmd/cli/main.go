package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sacco-cli",
		Short: "SACCO core CLI tool",
		Long:  `A command line interface for operating the SACCO core API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the SACCO core API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(loanCmd())
	rootCmd.AddCommand(memberCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run batch sweeps",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "interest",
		Short: "Credit daily interest to active savings accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postAndPrint("/api/v1/sweeps/interest", nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "overdue",
		Short: "Mark overdue and defaulted loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postAndPrint("/api/v1/sweeps/overdue", nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "scores",
		Short: "Recompute credit scores for all members",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postAndPrint("/api/v1/sweeps/credit-scores", nil)
		},
	})

	return cmd
}

func loanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "eligibility <member-id> <amount>",
		Short: "Check member eligibility for a loan amount",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{
				"member_id": args[0],
				"amount":    args[1],
			}
			return postAndPrint("/api/v1/loans/eligibility", body)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "schedule <principal> <months>",
		Short: "Preview an amortization schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("principal", args[0])
			q.Set("months", args[1])
			return getAndPrint("/api/v1/loans/schedule/preview?" + q.Encode())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <loan-id>",
		Short: "Show a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/api/v1/loans/" + url.PathEscape(args[0]))
		},
	})

	return cmd
}

func memberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Member operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "score <member-id>",
		Short: "Show a member's credit score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/api/v1/members/" + url.PathEscape(args[0]) + "/credit-score")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <member-id>",
		Short: "Show a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/api/v1/members/" + url.PathEscape(args[0]))
		},
	})

	return cmd
}

func getAndPrint(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func postAndPrint(path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", reader)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, string(data))
	}
	printJSON(parsed)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to format response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
