package nlu

import (
	"context"
	"sync"

	"github.com/ravin00/VoiceMart-Shopping-Assistant/config"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/llm"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/logger"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/types"
)

// Options configures one Processor. The zero value is a fully
// deterministic pipeline: no tagger, no clarifier.
type Options struct {
	MaxTextLen        int    // rune cap before sanitizing; 0 uses the package default
	ClarifierMode     string // config.ClarifierOff / Auto / Always
	ClarifierOverride bool   // let the clarifier overwrite pattern slots
	UseNER            bool
	Tagger            Tagger
	LLM               llm.Client // nil means build from env on first use
	Logger            *logger.Logger
}

// Processor turns raw utterances into structured shopping intents. Safe
// for concurrent use; the optional LLM client is built lazily once.
type Processor struct {
	opts Options
	log  *logger.Logger

	llmOnce sync.Once
	llmCli  llm.Client
	llmErr  error
}

func New(opts Options) *Processor {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger().WithField("component", "nlu")
	}
	return &Processor{opts: opts, log: log}
}

// Process runs the full pipeline on one utterance. It never fails:
// worst case the result is intent "unknown" with a generic reply.
func (p *Processor) Process(ctx context.Context, req types.QueryRequest) types.QueryResponse {
	text := FixTerms(sanitizeN(req.Text, p.opts.MaxTextLen))

	// Whole-text scans run first; the intent pattern's inline captures
	// land after and win on conflict.
	slots := map[string]any{"raw": text}
	extractAttributes(text, slots)
	extractPrices(text, slots)
	intent, groups := detectIntent(text)
	normalizeGroups(groups, slots)

	if p.opts.UseNER && p.opts.Tagger != nil {
		if ents, err := p.opts.Tagger.Tag(ctx, text); err != nil {
			p.log.Warnf("tagger pass skipped: %v", err)
			slots["_ner_error"] = err.Error()
		} else {
			applyEntities(ents, slots)
		}
	}

	clarifierUsed := false
	if p.shouldClarify(intent, slots) {
		intent, clarifierUsed = p.clarify(ctx, text, intent, slots)
	}

	polishSlots(slots)

	locale := req.Locale
	if locale == "" {
		locale = "en-US"
	}

	return types.QueryResponse{
		Intent:     string(intent),
		Confidence: scoreConfidence(intent, clarifierUsed),
		Slots:      slots,
		Reply:      composeReply(intent, slots),
		Action:     types.Action{Type: string(intent), Params: slots},
		UserID:     req.UserID,
		Locale:     locale,
	}
}

// shouldClarify decides whether the model pass runs: always-on mode
// unconditionally, auto mode only when the matcher came up short on an
// intent that needs a product.
func (p *Processor) shouldClarify(intent Intent, slots map[string]any) bool {
	switch p.opts.ClarifierMode {
	case config.ClarifierAlways:
		return true
	case config.ClarifierAuto:
		if intent == IntentUnknown {
			return true
		}
		if _, have := slots["product"]; !have {
			switch intent {
			case IntentSearch, IntentAdd, IntentRemove:
				return true
			}
		}
	}
	return false
}

// clarify runs the model pass and merges what survives validation.
// Failures contribute nothing beyond a diagnostic slot.
func (p *Processor) clarify(ctx context.Context, text string, intent Intent, slots map[string]any) (Intent, bool) {
	cli := p.client()
	if cli == nil {
		return intent, false
	}

	cl := &Clarifier{Client: cli}
	res, err := cl.Clarify(ctx, text, intent, slots)
	if err != nil {
		p.log.Warnf("clarifier pass skipped: %v", err)
		slots["_llm_error"] = err.Error()
		return intent, false
	}

	intent, used := res.merge(intent, slots, p.opts.ClarifierOverride)
	slots["_llm_used"] = used
	slots["_llm_model"] = cli.Name()
	slots["_llm_raw"] = res.raw
	return intent, used
}

func (p *Processor) client() llm.Client {
	p.llmOnce.Do(func() {
		if p.opts.LLM != nil {
			p.llmCli = p.opts.LLM
			return
		}
		p.llmCli, p.llmErr = llm.NewFromEnv()
		if p.llmErr != nil {
			p.log.Warnf("clarifier disabled: %v", p.llmErr)
			p.llmCli = nil
		}
	})
	return p.llmCli
}
