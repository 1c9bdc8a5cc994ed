package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	var v any
	if json.Unmarshal(body, &v) == nil {
		p, _ := json.MarshalIndent(v, "", "  ")
		fmt.Println(string(p))
		return
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("AJUSTES_URL", "http://localhost:8080")
		token   = envOr("AJUSTES_TOKEN", "")
	)

	c := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}

	root := &cobra.Command{
		Use:   "ajustesctl",
		Short: "CLI para el servicio de configuración del panel de admin",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.BaseURL = baseURL
			c.Token = token
		},
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env AJUSTES_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "JWT de sesión (env AJUSTES_TOKEN)")

	root.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Muestra el documento de configuración actual",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := c.do(http.MethodGet, "/v1/settings", nil)
			if err != nil {
				return err
			}
			c.print(status, body)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "rollback <token>",
		Short: "Deshace la última mutación usando su rollback token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, _ := json.Marshal(map[string]string{"token": args[0]})
			status, body, err := c.do(http.MethodPost, "/v1/settings/rollback", payload)
			if err != nil {
				return err
			}
			c.print(status, body)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "reset-appearance",
		Short: "Restaura la apariencia a los defaults del sistema",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := c.do(http.MethodDelete, "/v1/settings/appearance", nil)
			if err != nil {
				return err
			}
			c.print(status, body)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Chequea el estado del servicio (readyz)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := c.do(http.MethodGet, "/readyz", nil)
			if err != nil {
				return err
			}
			fmt.Printf("status=%d %s\n", status, strings.TrimSpace(string(body)))
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
