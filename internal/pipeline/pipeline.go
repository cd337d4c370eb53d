// Package pipeline wires the data stores and remote collaborators into the
// boxcheck stages: example generation, feature extraction, gold replay and
// decoding into submission annotations.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/boxcheck/internal/corrupt"
	"github.com/ppiankov/boxcheck/internal/embed"
	"github.com/ppiankov/boxcheck/internal/model"
	"github.com/ppiankov/boxcheck/internal/ner"
	"github.com/ppiankov/boxcheck/internal/predict"
	"github.com/ppiankov/boxcheck/internal/retrieve"
	"github.com/ppiankov/boxcheck/internal/tokenize"
	"github.com/ppiankov/boxcheck/internal/worker"
)

// Collaborators are the remote services a pipeline talks to. Nil fields are
// built from the configuration on first use.
type Collaborators struct {
	Embedder  embed.Embedder
	Tokenizer tokenize.Tokenizer
	Predictor predict.Predictor
	NER       ner.Factory
}

// Pipeline holds what every stage shares
type Pipeline struct {
	config   *model.Config
	labels   model.LabelSet
	cities   []string
	collab   Collaborators
	throttle worker.Throttle
	log      *zap.Logger
}

// NewPipeline creates a pipeline from configuration
func NewPipeline(cfg *model.Config, collab Collaborators, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	labels, err := model.LabelSetByName(cfg.Data.Labels)
	if err != nil {
		return nil, err
	}

	cities := corrupt.DefaultCities()
	if cfg.Data.CitiesFile != "" {
		cities, err = corrupt.LoadCities(cfg.Data.CitiesFile)
		if err != nil {
			return nil, err
		}
	}

	return &Pipeline{
		config:   cfg,
		labels:   labels,
		cities:   cities,
		collab:   collab,
		throttle: worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		log:      logger,
	}, nil
}

// Labels returns the configured label set
func (p *Pipeline) Labels() model.LabelSet {
	return p.labels
}

func (p *Pipeline) embedder() (embed.Embedder, error) {
	if p.collab.Embedder == nil {
		ecfg := embed.ConfigFromModel(p.config.Embedding)
		ecfg.Throttle = p.throttle
		e, err := embed.New(ecfg, p.config.Cache, p.log)
		if err != nil {
			return nil, fmt.Errorf("embedder: %w", err)
		}
		p.collab.Embedder = e
	}
	return p.collab.Embedder, nil
}

func (p *Pipeline) retriever() (*retrieve.Retriever, error) {
	e, err := p.embedder()
	if err != nil {
		return nil, err
	}
	return retrieve.New(e), nil
}

func (p *Pipeline) tokenizer() (tokenize.Tokenizer, error) {
	if p.collab.Tokenizer == nil {
		t, err := tokenize.NewClient(p.config.Tokenizer, p.throttle)
		if err != nil {
			return nil, fmt.Errorf("tokenizer: %w", err)
		}
		p.collab.Tokenizer = t
	}
	return p.collab.Tokenizer, nil
}

func (p *Pipeline) predictor() (predict.Predictor, error) {
	if p.collab.Predictor == nil {
		c, err := predict.NewClient(p.config.Predictor, p.throttle)
		if err != nil {
			return nil, fmt.Errorf("predictor: %w", err)
		}
		p.collab.Predictor = c
	}
	return p.collab.Predictor, nil
}

// recognizers uses the NER service when one is configured and the
// gazetteer otherwise
func (p *Pipeline) recognizers() (ner.Factory, error) {
	if p.collab.NER != nil {
		return p.collab.NER, nil
	}
	if p.config.NER.Endpoint == "" {
		p.log.Debug("no NER endpoint, using gazetteer")
		p.collab.NER = ner.GazetteerFactory(p.cities)
		return p.collab.NER, nil
	}
	r, err := ner.NewHTTPRecognizer(p.config.NER, p.throttle)
	if err != nil {
		return nil, fmt.Errorf("ner: %w", err)
	}
	p.collab.NER = ner.Static(r)
	return p.collab.NER, nil
}

func (p *Pipeline) corruptOptions() corrupt.Options {
	c := p.config.Corruption
	return corrupt.Options{
		Rate:        c.Rate,
		MaxRatio:    c.MaxRatio,
		StdDev:      c.StdDev,
		MaxAttempts: c.MaxAttempts,
		Labels:      p.labels,
		Cities:      p.cities,
		Logger:      p.log,
	}
}
