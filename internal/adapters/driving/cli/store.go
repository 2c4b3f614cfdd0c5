package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ferndale-labs/marque/internal/extract"
)

var (
	storeAddr  string
	storeURL   string
	storeTitle string
)

var storeCmd = &cobra.Command{
	Use:   "store [file]",
	Short: "Store a page capture from a file",
	Long: `Reads extracted page text (or raw HTML, detected by extension) from a
file and submits it to a running marque server. Stands in for the
browser capture agent.`,
	Args: cobra.ExactArgs(1),
	RunE: runStore,
}

func init() {
	storeCmd.Flags().StringVar(&storeAddr, "addr", "http://127.0.0.1:1729", "server address")
	storeCmd.Flags().StringVar(&storeURL, "url", "", "source URL of the capture (required)")
	storeCmd.Flags().StringVar(&storeTitle, "title", "", "page title")
	_ = storeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(storeCmd)
}

func runStore(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading capture: %w", err)
	}

	content := string(raw)
	title := storeTitle
	switch strings.ToLower(filepath.Ext(args[0])) {
	case ".html", ".htm":
		if title == "" {
			title = extract.Title(content)
		}
		content = extract.Text(content)
	}

	body, err := json.Marshal(map[string]string{
		"url":     storeURL,
		"title":   title,
		"content": content,
	})
	if err != nil {
		return err
	}

	resp, err := http.Post(storeAddr+"/api/store", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting capture: %w", err)
	}

	var ack struct {
		RecordID int64 `json:"record_id"`
	}
	if err := decodeResponse(resp, &ack); err != nil {
		return err
	}

	cmd.Printf("Stored record %d\n", ack.RecordID)
	return nil
}
