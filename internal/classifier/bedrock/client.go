package bedrock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"

	"casedocs-backend/internal/classifier"
)

const (
	toolName  = "record_classification"
	maxTokens = 4096
)

const systemInstruction = "You are a document classifier for case files. " +
	"Read the whole document text before deciding. " +
	"Weigh the document's purpose, format, and key entities such as issuers, account numbers, and dates. " +
	"Choose exactly one label from the candidate list; never invent a label. " +
	"If you are unsure, answer \"other\" with confidence 0.0. " +
	"Confidence must be a number between 0 and 1."

// ConverseAPI is the subset of the Bedrock runtime used by the client.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Client implements classifier.Client using the Bedrock Converse API.
type Client struct {
	api     ConverseAPI
	modelID string
}

// New builds a Client from the default AWS config chain.
func New(ctx context.Context, region, modelID string) (*Client, error) {
	if strings.TrimSpace(modelID) == "" {
		return nil, fmt.Errorf("BEDROCK_MODEL_ID is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Client{api: bedrockruntime.NewFromConfig(cfg), modelID: modelID}, nil
}

// NewWithAPI builds a Client around an explicit API, mainly for tests.
func NewWithAPI(api ConverseAPI, modelID string) *Client {
	return &Client{api: api, modelID: modelID}
}

// Classify sends the extracted text, candidate labels, and (when the byte
// signature is a known format) the raw document to the model, constrained to
// a single tool call with a strict output schema.
func (c *Client) Classify(ctx context.Context, in classifier.Input) (classifier.Output, error) {
	content := []types.ContentBlock{
		&types.ContentBlockMemberText{Value: buildPrompt(in.Text, in.CandidateLabels)},
	}
	if block := attachmentBlock(in.FileBytes, in.FileName); block != nil {
		content = append(content, block)
	}

	out, err := c.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: systemInstruction},
		},
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: content,
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(maxTokens),
			Temperature: aws.Float32(0.3),
		},
		ToolConfig: toolConfig(),
	})
	if err != nil {
		return classifier.Output{}, &classifier.TransportError{Op: "bedrock converse", Err: err}
	}

	raw, err := rawPayload(out)
	if err != nil {
		return classifier.Output{}, &classifier.TransportError{Op: "bedrock response", Err: err}
	}

	return classifier.Output{Raw: raw, Usage: usageFrom(out.Usage)}, nil
}

func buildPrompt(text string, candidateLabels []string) string {
	var sb strings.Builder
	sb.WriteString("Classify the following document into one of the candidate categories ")
	sb.WriteString("and report a confidence score between 0 and 1.\n\n")
	sb.WriteString("Candidate Categories:\n")
	for _, label := range candidateLabels {
		sb.WriteString("- ")
		sb.WriteString(label)
		sb.WriteString("\n")
	}
	sb.WriteString("\nDocument Text:\n")
	sb.WriteString(text)
	sb.WriteString("\n")
	return sb.String()
}

func toolConfig() *types.ToolConfiguration {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"document_type": map[string]any{
				"type":        "string",
				"description": "The chosen candidate label.",
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"text_source": map[string]any{
				"type":        "string",
				"description": "Short note on what part of the document drove the decision.",
			},
		},
		"required": []string{"document_type", "confidence"},
	}
	return &types.ToolConfiguration{
		Tools: []types.Tool{
			&types.ToolMemberToolSpec{Value: types.ToolSpecification{
				Name:        aws.String(toolName),
				Description: aws.String("Record the classification decision for the supplied document."),
				InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schema)},
			}},
		},
		ToolChoice: &types.ToolChoiceMemberTool{Value: types.SpecificToolChoice{
			Name: aws.String(toolName),
		}},
	}
}

// attachmentBlock returns a multimodal content block when the byte signature
// matches a format Converse accepts, nil otherwise.
func attachmentBlock(data []byte, fileName string) types.ContentBlock {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return &types.ContentBlockMemberDocument{Value: types.DocumentBlock{
			Format: types.DocumentFormatPdf,
			Name:   aws.String(documentName(fileName)),
			Source: &types.DocumentSourceMemberBytes{Value: data},
		}}
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}):
		return &types.ContentBlockMemberImage{Value: types.ImageBlock{
			Format: types.ImageFormatPng,
			Source: &types.ImageSourceMemberBytes{Value: data},
		}}
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return &types.ContentBlockMemberImage{Value: types.ImageBlock{
			Format: types.ImageFormatJpeg,
			Source: &types.ImageSourceMemberBytes{Value: data},
		}}
	default:
		return nil
	}
}

// documentName strips the extension and anything Converse rejects in names.
func documentName(fileName string) string {
	name := strings.TrimSuffix(fileName, ".pdf")
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == ' ':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	if sb.Len() == 0 {
		return "document"
	}
	return sb.String()
}

// rawPayload prefers the tool call input; text blocks are the fallback for
// models that answer in prose despite the forced tool choice.
func rawPayload(out *bedrockruntime.ConverseOutput) (string, error) {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("response missing message output")
	}

	var texts []string
	for _, block := range msg.Value.Content {
		switch b := block.(type) {
		case *types.ContentBlockMemberToolUse:
			if b.Value.Input == nil {
				continue
			}
			raw, err := b.Value.Input.MarshalSmithyDocument()
			if err != nil {
				return "", fmt.Errorf("marshal tool input: %w", err)
			}
			return string(raw), nil
		case *types.ContentBlockMemberText:
			if trimmed := strings.TrimSpace(b.Value); trimmed != "" {
				texts = append(texts, trimmed)
			}
		}
	}

	if len(texts) == 0 {
		return "", errors.New("response has no usable content")
	}
	return strings.Join(texts, "\n"), nil
}

func usageFrom(raw *types.TokenUsage) classifier.Usage {
	if raw == nil {
		return classifier.Usage{}
	}
	return classifier.Usage{
		InputTokens:  int(aws.ToInt32(raw.InputTokens)),
		OutputTokens: int(aws.ToInt32(raw.OutputTokens)),
		TotalTokens:  int(aws.ToInt32(raw.TotalTokens)),
	}
}

var _ classifier.Client = (*Client)(nil)
