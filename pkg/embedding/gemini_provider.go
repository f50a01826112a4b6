package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type GeminiProvider struct {
	ApiKey string
	Model  string
	Client *http.Client
}

var (
	_ EmbeddingProvider      = (*GeminiProvider)(nil)
	_ BatchEmbeddingProvider = (*GeminiProvider)(nil)
)

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		ApiKey: apiKey,
		Model:  "text-embedding-004",
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *GeminiProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	geminiReq := EmbeddingRequest{
		Model:    p.Model,
		Content:  EmbeddingRequestContent{Parts: []EmbeddingRequestContentPart{{Text: text}}},
		TaskType: taskType,
	}

	body, err := p.post(":embedContent", geminiReq)
	if err != nil {
		return nil, err
	}

	var resEmbedding EmbeddingResponse
	if err := json.Unmarshal(body, &resEmbedding); err != nil {
		return nil, err
	}
	return &resEmbedding, nil
}

// GenerateBatch embeds several texts in one batchEmbedContents call. The
// result has one vector per input, in order.
func (p *GeminiProvider) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	batchReq := BatchEmbeddingRequest{Requests: make([]EmbeddingRequest, len(texts))}
	for i, text := range texts {
		batchReq.Requests[i] = EmbeddingRequest{
			Model:    "models/" + p.Model,
			Content:  EmbeddingRequestContent{Parts: []EmbeddingRequestContentPart{{Text: text}}},
			TaskType: taskType,
		}
	}

	body, err := p.post(":batchEmbedContents", batchReq)
	if err != nil {
		return nil, err
	}

	var batchRes BatchEmbeddingResponse
	if err := json.Unmarshal(body, &batchRes); err != nil {
		return nil, err
	}
	if len(batchRes.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(batchRes.Embeddings), len(texts))
	}

	values := make([][]float32, len(texts))
	for i, e := range batchRes.Embeddings {
		values[i] = e.Values
	}
	return values, nil
}

func (p *GeminiProvider) post(method string, payload interface{}) ([]byte, error) {
	reqJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s%s",
		p.Model, method,
	)

	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(reqJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
	}
	return resByte, nil
}
