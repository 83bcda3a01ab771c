package infer

import (
	"fmt"
	"strings"
)

// Classifiers bundles the model backends selected by configuration.
// Saliency is nil when the backend cannot provide token attribution.
type Classifiers struct {
	Stance   StanceClassifier
	Safety   SafetyChecker
	Saliency SaliencyExplainer
}

// NewClassifiers creates classifier backends based on configuration
func NewClassifiers(config Config) (*Classifiers, error) {
	switch strings.ToLower(config.Provider) {
	case "server", "":
		client, err := NewServerClient(config)
		if err != nil {
			return nil, err
		}
		return &Classifiers{Stance: client, Safety: client, Saliency: client}, nil

	case "openai":
		client, err := NewOpenAIClassifier(config)
		if err != nil {
			return nil, err
		}
		return &Classifiers{Stance: client, Safety: client}, nil

	default:
		return nil, fmt.Errorf("unknown inference provider: %s (supported: server, openai)", config.Provider)
	}
}
