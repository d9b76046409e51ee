package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrCollectionNotFound is returned when a named collection does not exist
var ErrCollectionNotFound = errors.New("collection not found")

// ChromaDBClient wraps HTTP calls to the ChromaDB v2 API
type ChromaDBClient struct {
	hostURL    string // http://host:port
	baseURL    string // hostURL + /api/v2/tenants/{tenant}/databases/{database}
	httpClient *http.Client
	tenant     string
	database   string
}

// ChromaDBConfig holds configuration for ChromaDB connection
type ChromaDBConfig struct {
	Host     string
	Port     int
	Tenant   string // default: "default_tenant"
	Database string // default: "default_database"
	Timeout  time.Duration
}

// Collection represents a ChromaDB collection
type Collection struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata"`
}

// QueryResponse represents the response from a query
type QueryResponse struct {
	IDs       [][]string                 `json:"ids"`
	Documents [][]string                 `json:"documents"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Distances [][]float32                `json:"distances"`
}

// NewChromaDBClient creates a new ChromaDB client with v2 API support
func NewChromaDBClient(config ChromaDBConfig) *ChromaDBClient {
	if config.Tenant == "" {
		config.Tenant = "default_tenant"
	}
	if config.Database == "" {
		config.Database = "default_database"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	hostURL := fmt.Sprintf("http://%s:%d", config.Host, config.Port)

	return &ChromaDBClient{
		hostURL: hostURL,
		baseURL: fmt.Sprintf("%s/api/v2/tenants/%s/databases/%s", hostURL, config.Tenant, config.Database),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		tenant:   config.Tenant,
		database: config.Database,
	}
}

// newChromaDBClientForURL points the client at an arbitrary host URL (used by tests)
func newChromaDBClientForURL(hostURL string) *ChromaDBClient {
	return &ChromaDBClient{
		hostURL:    hostURL,
		baseURL:    hostURL + "/api/v2/tenants/default_tenant/databases/default_database",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		tenant:     "default_tenant",
		database:   "default_database",
	}
}

// Heartbeat checks if ChromaDB is alive
func (c *ChromaDBClient) Heartbeat(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, c.hostURL+"/api/v2/heartbeat", nil)
	if err != nil {
		return fmt.Errorf("heartbeat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heartbeat failed with status: %d", resp.StatusCode)
	}
	return nil
}

// CreateCollection creates a new collection using cosine distance unless metadata says otherwise
func (c *ChromaDBClient) CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) (*Collection, error) {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	if _, ok := metadata["hnsw:space"]; !ok {
		metadata["hnsw:space"] = "cosine"
	}

	payload := map[string]interface{}{
		"name":          name,
		"metadata":      metadata,
		"get_or_create": true,
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/collections", payload)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError("create collection", resp)
	}

	var collection Collection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &collection, nil
}

// GetCollection retrieves a collection by name
func (c *ChromaDBClient) GetCollection(ctx context.Context, name string) (*Collection, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/collections/"+name, nil)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get collection", resp)
	}

	var collection Collection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &collection, nil
}

// DeleteCollection deletes a collection
func (c *ChromaDBClient) DeleteCollection(ctx context.Context, name string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.baseURL+"/collections/"+name, nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("delete collection", resp)
	}
	return nil
}

// CountCollection returns the number of records in a collection
func (c *ChromaDBClient) CountCollection(ctx context.Context, name string) (int, error) {
	collection, err := c.GetCollection(ctx, name)
	if err != nil {
		return 0, err
	}

	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s/count", c.baseURL, collection.ID), nil)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, statusError("count collection", resp)
	}

	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return count, nil
}

// AddDocuments adds records with precomputed embeddings to a collection
func (c *ChromaDBClient) AddDocuments(ctx context.Context, collectionName string, ids []string, documents []string, embeddings [][]float32, metadatas []map[string]interface{}) error {
	collection, err := c.GetCollection(ctx, collectionName)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"ids":        ids,
		"documents":  documents,
		"embeddings": embeddings,
	}
	if metadatas != nil {
		payload["metadatas"] = metadatas
	}

	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/add", c.baseURL, collection.ID), payload)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("add documents", resp)
	}
	return nil
}

// Query searches for the nResults nearest records of each query embedding
func (c *ChromaDBClient) Query(ctx context.Context, collectionName string, queryEmbeddings [][]float32, nResults int) (*QueryResponse, error) {
	collection, err := c.GetCollection(ctx, collectionName)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"query_embeddings": queryEmbeddings,
		"n_results":        nResults,
		"include":          []string{"documents", "metadatas", "distances"},
	}

	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/query", c.baseURL, collection.ID), payload)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("query", resp)
	}

	var queryResp QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&queryResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &queryResp, nil
}

// Close closes the HTTP client connections
func (c *ChromaDBClient) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *ChromaDBClient) do(ctx context.Context, method, url string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s failed (status %d): %s", op, resp.StatusCode, string(body))
}
