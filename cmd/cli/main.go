package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	rootCmd   = &cobra.Command{
		Use:   "bookqueue",
		Short: "BookQueue CLI - Queue monitor for the book download server",
		Long:  `A command-line interface for watching and controlling the book download queue.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8084", "Server URL")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(reorderCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the download queue",
	Run: func(cmd *cobra.Command, args []string) {
		status, _ := cmd.Flags().GetString("status")

		url := serverURL + "/api/v1/queue"
		if status != "" {
			url += "?status=" + status
		}

		resp, err := http.Get(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var result struct {
			Items []map[string]interface{} `json:"items"`
		}
		json.Unmarshal(body, &result)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "POS\tID\tTITLE\tSTATUS\tPROGRESS")
		for _, item := range result.Items {
			title, _ := item["title"].(string)
			fmt.Fprintf(w, "%v\t%s\t%s\t%s\t%.0f%%\n",
				item["position"],
				truncate(stringField(item, "id"), 12),
				truncate(title, 40),
				item["status"],
				floatField(item, "progress"))
		}
		w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show queue statistics",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/queue/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var stats map[string]interface{}
		json.Unmarshal(body, &stats)

		fmt.Println("Queue Statistics:")
		fmt.Printf("  Total:       %v\n", stats["total"])
		fmt.Printf("  Queued:      %v\n", stats["queued"])
		fmt.Printf("  Waiting:     %v\n", stats["waiting"])
		fmt.Printf("  Downloading: %v\n", stats["downloading"])
		fmt.Printf("  Completed:   %v\n", stats["completed"])
		fmt.Printf("  Failed:      %v\n", stats["error"])
		fmt.Printf("  History:     %v\n", stats["history"])
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get download details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
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

		var state map[string]interface{}
		json.Unmarshal(body, &state)

		fmt.Printf("Download Details:\n")
		fmt.Printf("  ID:       %s\n", state["id"])
		fmt.Printf("  Title:    %s\n", state["title"])
		fmt.Printf("  Author:   %s\n", state["author"])
		fmt.Printf("  Status:   %s\n", state["status"])
		fmt.Printf("  Progress: %.0f%%\n", floatField(state, "progress"))
		if state["error"] != nil && state["error"] != "" {
			fmt.Printf("  Error:    %s\n", state["error"])
		}
	},
}

var addCmd = &cobra.Command{
	Use:   "add [id]",
	Short: "Request a book download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")
		author, _ := cmd.Flags().GetString("author")
		cover, _ := cmd.Flags().GetString("cover")

		payload := map[string]string{"id": args[0]}
		if title != "" {
			payload["title"] = title
		}
		if author != "" {
			payload["author"] = author
		}
		if cover != "" {
			payload["cover_url"] = cover
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
		fmt.Printf("Download requested!\n")
		fmt.Printf("ID: %s\n", result["id"])
		fmt.Printf("Status: %s\n", result["status"])
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel a download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
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

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear completed downloads from the queue",
	Run: func(cmd *cobra.Command, args []string) {
		req, _ := http.NewRequest(http.MethodDelete, serverURL+"/api/v1/downloads/completed", nil)
		resp, err := http.DefaultClient.Do(req)
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

		var result map[string]interface{}
		json.Unmarshal(body, &result)
		fmt.Printf("Cleared %v completed download(s)\n", result["removed"])
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently finished downloads",
	Run: func(cmd *cobra.Command, args []string) {
		clearFlag, _ := cmd.Flags().GetBool("clear")
		if clearFlag {
			req, _ := http.NewRequest(http.MethodDelete, serverURL+"/api/v1/history", nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer resp.Body.Close()
			fmt.Println("History cleared")
			return
		}

		resp, err := http.Get(serverURL + "/api/v1/history")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var result struct {
			History []map[string]interface{} `json:"history"`
		}
		json.Unmarshal(body, &result)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tFINISHED")
		for _, rec := range result.History {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				truncate(stringField(rec, "job_id"), 12),
				truncate(stringField(rec, "title"), 40),
				rec["status"],
				rec["timestamp"])
		}
		w.Flush()
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show active and recent notifications",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/notifications")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var result struct {
			Visible []map[string]interface{} `json:"visible"`
			Recent  []map[string]interface{} `json:"recent"`
		}
		json.Unmarshal(body, &result)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tTITLE\tCREATED")
		for _, n := range result.Recent {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				truncate(stringField(n, "id"), 12),
				n["kind"],
				truncate(stringField(n, "title"), 40),
				n["created_at"])
		}
		w.Flush()
		fmt.Printf("\n%d notification(s) currently on screen\n", len(result.Visible))
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss [id]",
	Short: "Dismiss a visible notification",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		resp, err := http.Post(serverURL+"/api/v1/notifications/"+id+"/dismiss", "application/json", nil)
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
		fmt.Println("Notification dismissed")
	},
}

var reorderCmd = &cobra.Command{
	Use:   "reorder [from] [to]",
	Short: "Move a queued download to a new position",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		var from, to int
		if _, err := fmt.Sscanf(args[0], "%d", &from); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid from position %q\n", args[0])
			os.Exit(1)
		}
		if _, err := fmt.Sscanf(args[1], "%d", &to); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid to position %q\n", args[1])
			os.Exit(1)
		}

		payload := map[string]int{"dragged_index": from, "hover_index": to}
		data, _ := json.Marshal(payload)
		resp, err := http.Post(serverURL+"/api/v1/queue/reorder", "application/json", bytes.NewBuffer(data))
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
		fmt.Println("Queue order updated")
	},
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "Filter by status")
	addCmd.Flags().StringP("title", "t", "", "Book title")
	addCmd.Flags().StringP("author", "a", "", "Book author")
	addCmd.Flags().String("cover", "", "Cover image URL")
	historyCmd.Flags().Bool("clear", false, "Clear the history instead of listing it")
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func floatField(m map[string]interface{}, key string) float64 {
	f, _ := m[key].(float64)
	return f
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
