package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bluelist/client"
	"github.com/sagarc03/bluelist/config"
)

var itemsEndpoint string

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Call a running gateway",
	Long: `Call the item and signing routes of a running gateway.

The endpoint defaults to http://localhost:{server.port} and the route prefix
to server.context_root.

Examples:
  bluelist items list
  bluelist items create '{"name":"sensor1"}'
  bluelist items update 3f6c... '{"name":"sensor2"}'
  bluelist items sign photo.png`,
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := itemsClient(cmd)
		if err != nil {
			return err
		}
		records, err := c.ListItems(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, records)
	},
}

var itemsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := itemsClient(cmd)
		if err != nil {
			return err
		}
		rec, err := c.GetItem(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, rec)
	},
}

var itemsCreateCmd = &cobra.Command{
	Use:   "create <json>",
	Short: "Create an item from a JSON object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := parseFields(args[0])
		if err != nil {
			return err
		}
		c, err := itemsClient(cmd)
		if err != nil {
			return err
		}
		rec, err := c.CreateItem(cmd.Context(), fields)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, rec)
	},
}

var itemsUpdateCmd = &cobra.Command{
	Use:   "update <id> <json>",
	Short: "Replace the fields of an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := parseFields(args[1])
		if err != nil {
			return err
		}
		c, err := itemsClient(cmd)
		if err != nil {
			return err
		}
		rec, err := c.UpdateItem(cmd.Context(), args[0], fields)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, rec)
	},
}

var itemsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an item",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := itemsClient(cmd)
		if err != nil {
			return err
		}
		if err := c.DeleteItem(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

var itemsSignCmd = &cobra.Command{
	Use:   "sign <fileName>",
	Short: "Request an upload policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := itemsClient(cmd)
		if err != nil {
			return err
		}
		signed, err := c.Sign(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, signed)
	},
}

func init() {
	itemsCmd.PersistentFlags().StringVarP(&itemsEndpoint, "endpoint", "e", "", "gateway URL (default: http://localhost:{server.port})")

	itemsCmd.AddCommand(itemsListCmd)
	itemsCmd.AddCommand(itemsGetCmd)
	itemsCmd.AddCommand(itemsCreateCmd)
	itemsCmd.AddCommand(itemsUpdateCmd)
	itemsCmd.AddCommand(itemsDeleteCmd)
	itemsCmd.AddCommand(itemsSignCmd)
	rootCmd.AddCommand(itemsCmd)
}

func itemsClient(cmd *cobra.Command) (*client.Client, error) {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return nil, err
	}

	endpoint := itemsEndpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	return client.New(&client.Config{
		Endpoint:    endpoint,
		ContextRoot: cfg.Server.ContextRoot,
	})
}

func parseFields(raw string) (map[string]any, error) {
	var fields map[string]any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("parse item fields: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
