package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"expertcof/internal/shared/metrics"
	"expertcof/internal/users"
)

var (
	ErrInvalidPostalCode  = errors.New("postal code must have 8 digits")
	ErrPostalCodeNotFound = errors.New("postal code not found")
)

// UserMessage is the text shown for a failed lookup.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidPostalCode):
		return "CEP inválido."
	case errors.Is(err, ErrPostalCodeNotFound):
		return "CEP não encontrado."
	default:
		return "Erro ao buscar CEP."
	}
}

// Address is the part of a lookup that fills the profile form.
type Address struct {
	PostalCode string `json:"cep"`
	Street     string `json:"logradouro"`
	District   string `json:"bairro"`
	City       string `json:"localidade"`
	State      string `json:"uf"`
}

// Client queries a ViaCEP-compatible address service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the service at baseURL.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Normalize strips everything but digits and requires exactly eight.
func Normalize(raw string) (string, error) {
	code := users.Digits(raw)
	if len(code) != 8 {
		return "", ErrInvalidPostalCode
	}
	return code, nil
}

// Lookup resolves a postal code. Invalid codes never reach the network.
func (c *Client) Lookup(ctx context.Context, raw string) (Address, error) {
	code, err := Normalize(raw)
	if err != nil {
		return Address{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ws/"+code+"/json/", nil)
	if err != nil {
		return Address{}, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRemoteCall("postal", "error", time.Since(start))
		return Address{}, fmt.Errorf("lookup %s: %w", code, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemoteCall("postal", strconv.Itoa(resp.StatusCode), time.Since(start))

	// ViaCEP answers 400 for malformed codes and 200 with erro=true for
	// unknown ones.
	if resp.StatusCode == http.StatusBadRequest {
		return Address{}, ErrInvalidPostalCode
	}
	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("lookup %s: status %d", code, resp.StatusCode)
	}

	var body struct {
		Address
		Erro any `json:"erro"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return Address{}, fmt.Errorf("decode lookup %s: %w", code, err)
	}
	if notFound(body.Erro) {
		return Address{}, ErrPostalCodeNotFound
	}
	if body.PostalCode == "" {
		body.PostalCode = code[:5] + "-" + code[5:]
	}
	return body.Address, nil
}

// notFound accepts both the boolean and the string form of the flag.
func notFound(flag any) bool {
	switch v := flag.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
