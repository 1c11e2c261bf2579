package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:   "mediagrab",
		Short: "MediaGrab CLI - Download manager for YouTube, Twitter, Instagram, Facebook and TikTok",
		Long:  `A command-line interface for managing video downloads across platforms.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8090", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(outcomeCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(retryCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

var addCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Add a download to the queue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		url := args[0]
		quality, _ := cmd.Flags().GetString("quality")
		platform, _ := cmd.Flags().GetString("platform")

		payload := map[string]string{
			"url": url,
		}
		if quality != "" {
			payload["quality"] = quality
		}
		if platform != "" {
			payload["platform"] = platform
		}

		data, _ := json.Marshal(payload)
		resp, err := http.Post(serverURL+"/api/v1/downloads", "application/json", bytes.NewBuffer(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusCreated {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var result map[string]interface{}
		json.Unmarshal(body, &result)
		color.Green("Download added successfully!")
		fmt.Printf("ID: %s\n", result["id"])
		fmt.Printf("Platform: %s\n", result["platform"])
		fmt.Printf("Status: %s\n", result["status"])
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all downloads",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		status, _ := cmd.Flags().GetString("status")
		platform, _ := cmd.Flags().GetString("platform")

		url := serverURL + "/api/v1/downloads"
		sep := "?"
		if status != "" {
			url += sep + "status=" + status
			sep = "&"
		}
		if platform != "" {
			url += sep + "platform=" + platform
		}

		resp, err := http.Get(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var downloads []map[string]interface{}
		json.Unmarshal(body, &downloads)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tURL\tPLATFORM\tSTATUS\tCREATED")
		for _, d := range downloads {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				truncate(d["id"].(string), 8),
				truncate(d["url"].(string), 40),
				d["platform"],
				d["status"],
				d["created_at"])
		}
		w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Get(serverURL + "/api/v1/downloads/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var stats map[string]interface{}
		json.Unmarshal(body, &stats)

		fmt.Println("Download Statistics:")
		fmt.Printf("  Total:      %v\n", stats["total"])
		fmt.Printf("  Queued:     %v\n", stats["queued"])
		fmt.Printf("  Processing: %v\n", stats["processing"])
		fmt.Printf("  Completed:  %v\n", stats["completed"])
		fmt.Printf("  Failed:     %v\n", stats["failed"])
		fmt.Printf("  Cancelled:  %v\n", stats["cancelled"])
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get download details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		id := args[0]
		resp, err := http.Get(serverURL + "/api/v1/downloads/" + id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var download map[string]interface{}
		json.Unmarshal(body, &download)

		fmt.Printf("Download Details:\n")
		fmt.Printf("  ID:       %s\n", download["id"])
		fmt.Printf("  URL:      %s\n", download["url"])
		fmt.Printf("  Platform: %s\n", download["platform"])
		fmt.Printf("  Status:   %s\n", download["status"])
		fmt.Printf("  Quality:  %s\n", download["quality"])
		fmt.Printf("  Created:  %s\n", download["created_at"])
		if download["file_path"] != nil && download["file_path"] != "" {
			fmt.Printf("  File:     %s\n", download["file_path"])
		}
		if download["error_message"] != nil && download["error_message"] != "" {
			fmt.Printf("  Error:    %s\n", download["error_message"])
		}
	},
}

var outcomeCmd = &cobra.Command{
	Use:   "outcome [id]",
	Short: "Show the strategy attempt trail for a download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		id := args[0]
		jsonOutput, _ := cmd.Flags().GetBool("json")

		resp, err := http.Get(serverURL + "/api/v1/downloads/" + id + "/outcome")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		if jsonOutput {
			var pretty bytes.Buffer
			json.Indent(&pretty, body, "", "  ")
			fmt.Println(pretty.String())
			return
		}

		var outcome struct {
			URL             string `json:"url"`
			Platform        string `json:"platform"`
			FinalPath       string `json:"final_path"`
			WinningStrategy string `json:"winning_strategy"`
			PostProcessNote string `json:"post_process_note"`
			Attempts        []struct {
				StrategyID  string `json:"strategy_id"`
				Success     bool   `json:"success"`
				FailureKind string `json:"failure_kind"`
				Diagnostic  string `json:"diagnostic"`
			} `json:"attempts"`
		}
		json.Unmarshal(body, &outcome)

		fmt.Printf("Outcome for %s (%s):\n", outcome.URL, outcome.Platform)
		for i, a := range outcome.Attempts {
			if a.Success {
				color.Green("  %d. %s: success", i+1, a.StrategyID)
			} else {
				color.Red("  %d. %s: %s", i+1, a.StrategyID, a.FailureKind)
				if a.Diagnostic != "" {
					fmt.Printf("     %s\n", truncate(a.Diagnostic, 100))
				}
			}
		}
		if outcome.WinningStrategy != "" {
			fmt.Printf("  Winning strategy: %s\n", outcome.WinningStrategy)
		}
		if outcome.PostProcessNote != "" {
			color.Yellow("  Note: %s", outcome.PostProcessNote)
		}
		if outcome.FinalPath != "" {
			fmt.Printf("  File: %s\n", outcome.FinalPath)
		}
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel a download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		id := args[0]
		resp, err := http.Post(serverURL+"/api/v1/downloads/"+id+"/cancel", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}
		fmt.Println("Download cancelled successfully")
	},
}

var retryCmd = &cobra.Command{
	Use:   "retry [id]",
	Short: "Retry a failed download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		id := args[0]
		resp, err := http.Post(serverURL+"/api/v1/downloads/"+id+"/retry", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}
		fmt.Println("Download queued for retry")
	},
}

func init() {
	addCmd.Flags().StringP("quality", "q", "", "Quality (best, medium, worst, or an explicit format token)")
	addCmd.Flags().StringP("platform", "p", "", "Platform (youtube, twitter, instagram, facebook, tiktok)")
	listCmd.Flags().StringP("status", "s", "", "Filter by status")
	listCmd.Flags().StringP("platform", "p", "", "Filter by platform")
	outcomeCmd.Flags().BoolP("json", "j", false, "Output in JSON format")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
