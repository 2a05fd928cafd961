package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/confmine/confmine/internal/util"
	"github.com/confmine/confmine/pkg/ner"
)

// TaggerClient implements ner.Extractor against any OpenAI-compatible chat
// endpoint, using structured output to force (text, type) span lists.
//
// A TaggerClient should be created with NewTaggerClient.
type TaggerClient struct {
	model      string
	baseURL    string
	maxRetries int

	client *openai.Client
}

// NewTaggerClientParams configures a TaggerClient.
//
// Model names the tagging model. BaseURL and APIKey configure the endpoint;
// an empty BaseURL uses the public OpenAI API. MaxRetries bounds how often a
// failed or unparseable tagging call is reissued before the error is
// returned to the caller.
type NewTaggerClientParams struct {
	Model   string
	BaseURL string
	APIKey  string

	MaxRetries int
}

// NewTaggerClient creates a model-backed entity tagger.
func NewTaggerClient(params NewTaggerClientParams) *TaggerClient {
	options := []option.RequestOption{
		option.WithAPIKey(params.APIKey),
	}
	if params.BaseURL != "" {
		options = append(options, option.WithBaseURL(params.BaseURL))
	}
	client := openai.NewClient(options...)

	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	return &TaggerClient{
		model:      params.Model,
		baseURL:    params.BaseURL,
		maxRetries: maxRetries,
		client:     &client,
	}
}

// Extract tags entity mentions in text and returns them in input order.
func (c *TaggerClient) Extract(ctx context.Context, text string) ([]ner.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	schema := ner.GenerateSchema(ner.TagResponse{})
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "tag_entities",
		Description: openai.String("Tag person, organization and location mentions in a text fragment."),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	systemPrompt := fmt.Sprintf(ner.TagPromptText, strings.Join(ner.TagTypes(), ","))

	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0.0),
	}

	res, err := util.RetryWithContext(ctx, c.maxRetries, func(ctx context.Context) (ner.TagResponse, error) {
		var out ner.TagResponse

		response, err := c.client.Chat.Completions.New(ctx, body)
		if err != nil {
			return out, err
		}
		if len(response.Choices) == 0 {
			return out, fmt.Errorf("no choices in response from model")
		}
		message := response.Choices[0].Message.Content
		if message == "" {
			return out, fmt.Errorf("empty response from model (finish_reason: %s)", response.Choices[0].FinishReason)
		}

		if err := ner.UnmarshalFlexible(message, &out); err != nil {
			return out, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	return res.Spans(), nil
}
