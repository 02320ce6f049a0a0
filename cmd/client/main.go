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

	"github.com/MaxRadzey/codecgateway/internal/models"
	"github.com/spf13/cobra"
)

var (
	endpoint string
	codecArg string
)

func main() {
	root := &cobra.Command{
		Use:   "client",
		Short: "Клиент шлюза сжатия",
	}
	root.PersistentFlags().StringVar(&endpoint, "addr", "http://localhost:8080", "адрес шлюза")
	root.PersistentFlags().StringVar(&codecArg, "codec", "gzip", "кодек: gzip или brotli")

	root.AddCommand(compressCmd(), decompressCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func compressCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "compress [json]",
		Short: "Сжать JSON (аргумент или stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if !json.Valid(input) {
				return fmt.Errorf("input is not valid JSON")
			}

			body, err := json.Marshal(models.CompressRequest{Data: input})
			if err != nil {
				return err
			}

			path := "/compress/" + codecArg + "/"
			if raw {
				path += "raw/"
			}
			resp, err := post(path, "application/json", body)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(resp)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "вывести сжатые байты без base64")
	return cmd
}

func decompressCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "decompress [base64]",
		Short: "Распаковать base64 (аргумент или stdin) или сырые байты из stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var resp []byte
			if raw {
				resp, err = post("/decompress/"+codecArg+"/raw/", "application/octet-stream", input)
			} else {
				var body []byte
				body, err = json.Marshal(map[string]string{"data": strings.TrimSpace(string(input))})
				if err != nil {
					return err
				}
				resp, err = post("/decompress/"+codecArg+"/base64/", "application/json", body)
			}
			if err != nil {
				return err
			}

			var out models.DecompressResponse
			if err := json.Unmarshal(resp, &out); err != nil {
				return fmt.Errorf("unexpected response: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out.DecompressedData)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "stdin содержит сырые сжатые байты")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 {
		return []byte(args[0]), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ввода: %w", err)
	}
	return data, nil
}

func post(path, contentType string, body []byte) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	request, err := http.NewRequest(http.MethodPost, strings.TrimSuffix(endpoint, "/")+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", contentType)

	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Detail != "" {
			return nil, fmt.Errorf("статус-код %d: %s", response.StatusCode, e.Detail)
		}
		return nil, fmt.Errorf("статус-код %d", response.StatusCode)
	}
	return data, nil
}
