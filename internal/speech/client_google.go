package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

// GoogleClient uses Cloud Speech synchronous recognition. Without a
// credentials file it relies on Application Default Credentials.
type GoogleClient struct {
	client     *gspeech.Client
	language   string
	sampleRate int32
}

func NewGoogleClient(ctx context.Context, credentialsFile, language string, sampleRate int) (*GoogleClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gspeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &GoogleClient{
		client:     client,
		language:   language,
		sampleRate: int32(sampleRate),
	}, nil
}

func (g *GoogleClient) Close() error {
	return g.client.Close()
}

func (g *GoogleClient) Transcribe(ctx context.Context, filePath string) ([]Segment, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	encoding, withRate := googleEncoding(filePath)
	cfg := &speechpb.RecognitionConfig{
		Encoding:                   encoding,
		LanguageCode:               g.language,
		EnableAutomaticPunctuation: true,
	}
	if withRate {
		cfg.SampleRateHertz = g.sampleRate
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("google recognize: %w", err)
	}

	var (
		segments []Segment
		prevEnd  float64
	)
	for _, result := range resp.GetResults() {
		if len(result.GetAlternatives()) == 0 {
			continue
		}
		end := result.GetResultEndTime().AsDuration().Seconds()
		segments = append(segments, Segment{
			Text:  result.GetAlternatives()[0].GetTranscript(),
			Start: prevEnd,
			End:   end,
		})
		prevEnd = end
	}
	return segments, nil
}

// googleEncoding picks the encoding from the file extension. The bool
// reports whether the sample rate must be sent (headerless containers).
func googleEncoding(path string) (speechpb.RecognitionConfig_AudioEncoding, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webm":
		return speechpb.RecognitionConfig_WEBM_OPUS, true
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS, true
	case ".flac":
		return speechpb.RecognitionConfig_FLAC, false
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16, false
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, false
	}
}
