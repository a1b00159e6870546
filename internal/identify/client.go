// Package identify submits tree photos to the Plant.id identification service.
package identify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/pkg/models"
)

// OrganBark is the body-part hint sent with every photo
const OrganBark = "bark"

// ErrNoMatch is returned when the service answers but suggests nothing
var ErrNoMatch = errors.New("no matching tree found")

// Identifier maps a photo to its best species guess
type Identifier interface {
	Identify(ctx context.Context, photo []byte, filename string) (*models.Identification, error)
}

type identifyResponse struct {
	Suggestions []struct {
		PlantName    string  `json:"plant_name"`
		Probability  float64 `json:"probability"`
		PlantDetails struct {
			WikiURL string `json:"wiki_url"`
		} `json:"plant_details"`
	} `json:"suggestions"`
}

// PlantIDClient talks to the Plant.id v2 identify endpoint
type PlantIDClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

// NewPlantIDClient creates a client; an empty apiKey makes every call fail as unavailable
func NewPlantIDClient(client *http.Client, endpoint, apiKey string) *PlantIDClient {
	return &PlantIDClient{
		client:   client,
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(apiKey),
	}
}

// Identify uploads the photo with the bark hint and returns the top suggestion
func (c *PlantIDClient) Identify(ctx context.Context, photo []byte, filename string) (*models.Identification, error) {
	if c.apiKey == "" {
		return nil, apperrors.NewUnavailableError("PLANT_ID_API_KEY is not set", nil)
	}

	body, contentType, err := buildForm(photo, filename)
	if err != nil {
		return nil, apperrors.NewInternalError("cannot build identification request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, apperrors.NewInternalError("invalid identification endpoint", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("identification timed out", err)
		}
		return nil, apperrors.NewNetworkError("identification request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewNetworkError(fmt.Sprintf("API Error: %d", resp.StatusCode), nil).
			WithDetails(strings.TrimSpace(string(snippet)))
	}

	var parsed identifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewProcessingError("cannot decode identification response", err)
	}
	if len(parsed.Suggestions) == 0 || parsed.Suggestions[0].PlantName == "" {
		return nil, ErrNoMatch
	}

	top := parsed.Suggestions[0]
	return &models.Identification{
		Name:         top.PlantName,
		ReferenceURL: top.PlantDetails.WikiURL,
		Probability:  top.Probability,
	}, nil
}

func buildForm(photo []byte, filename string) (io.Reader, string, error) {
	if filename == "" {
		filename = "capture.png"
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("images", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(photo); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("organs", OrganBark); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
