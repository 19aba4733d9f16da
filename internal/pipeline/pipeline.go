package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/okrause/faunareel/internal"
	"codeberg.org/okrause/faunareel/internal/audio"
	"codeberg.org/okrause/faunareel/internal/cache"
	"codeberg.org/okrause/faunareel/internal/config"
	"codeberg.org/okrause/faunareel/internal/facts"
	"codeberg.org/okrause/faunareel/internal/history"
	"codeberg.org/okrause/faunareel/internal/image"
	"codeberg.org/okrause/faunareel/internal/logging"
	"codeberg.org/okrause/faunareel/internal/video"
	"codeberg.org/okrause/faunareel/internal/whatsapp"
)

// State names a pipeline stage or terminal outcome.
type State string

const (
	StateSelectingSubject    State = "selecting_subject"
	StateGeneratingNarration State = "generating_narration"
	StateSourcingImages      State = "sourcing_images"
	StateSynthesizingAudio   State = "synthesizing_audio"
	StateAssemblingVideo     State = "assembling_video"
	StateDelivering          State = "delivering"
	StateCleanup             State = "cleanup"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

const (
	// factsTimeout bounds a single suggestion or narration call.
	factsTimeout = 60 * time.Second

	// recentSubjectLimit caps the history exclusion list sent along
	// with a suggestion request.
	recentSubjectLimit = 25
)

// Result is the snapshot of a finished run.
type Result struct {
	RunID     string
	Subject   string
	Narration string

	AudioPath   string
	TimingsPath string
	ImagePaths  []string
	VideoPath   string

	State          State
	Delivered      bool
	DeliveryError  error
	StageDurations map[State]time.Duration
	Elapsed        time.Duration
}

// imageSourcer matches *image.Sourcer.
type imageSourcer interface {
	Source(ctx context.Context, subject string, max int) ([]string, error)
}

// videoAssembler matches *video.Assembler.
type videoAssembler interface {
	Assemble(ctx context.Context, audioPath string, imagePaths []string, stem string) (string, error)
}

// messageSender matches *whatsapp.Client.
type messageSender interface {
	Send(ctx context.Context, videoPath, chatID, caption string) error
}

// Pipeline wires the run components together.
type Pipeline struct {
	config  *config.Config
	facts   facts.Provider
	images  imageSourcer
	audio   audio.Provider
	video   videoAssembler
	sender  messageSender
	cache   *cache.Store
	history *history.Store

	// probe measures media duration and enforces the minimum length.
	probe func(ctx context.Context, path string, min time.Duration) (float64, error)
}

// New builds a Pipeline from the configuration, verifying credentials
// and external tools up front so a run cannot fail halfway through on
// a missing key.
func New(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	if cfg.FactsProvider == config.FactsGemini {
		if cfg.GeminiKey == "" {
			return nil, &ConfigurationError{Setting: "GEMINI_API_KEY", Reason: "required for the gemini fact provider"}
		}
	} else if cfg.OpenRouterKey == "" {
		return nil, &ConfigurationError{Setting: "OPENROUTER_API_KEY", Reason: "no OpenRouter API key configured"}
	}
	if cfg.UnsplashKey == "" {
		return nil, &ConfigurationError{Setting: "UNSPLASH_ACCESS_KEY", Reason: "no Unsplash access key configured"}
	}
	if cfg.AudioProvider == config.AudioOpenAI && cfg.OpenAIKey == "" {
		return nil, &ConfigurationError{Setting: "OPENAI_API_KEY", Reason: "required for the openai audio provider"}
	}
	if cfg.SpeakerWAV != "" {
		if _, err := os.Stat(cfg.SpeakerWAV); err != nil {
			return nil, &ConfigurationError{Setting: "--speaker-wav", Reason: "reference sample not readable: " + err.Error()}
		}
	}

	factsProvider, err := facts.NewProvider(ctx, &facts.Config{
		Provider:      cfg.FactsProvider,
		Model:         cfg.FactsModel,
		OpenRouterKey: cfg.OpenRouterKey,
		GeminiKey:     cfg.GeminiKey,
	})
	if err != nil {
		return nil, &ConfigurationError{Setting: "facts.provider", Reason: err.Error()}
	}

	audioProvider, err := audio.NewProvider(&audio.Config{
		Provider:     cfg.AudioProvider,
		ModelDefault: cfg.TTSModelDefault,
		ModelCloning: cfg.TTSModelCloning,
		SpeakerWAV:   cfg.SpeakerWAV,
		OpenAIKey:    cfg.OpenAIKey,
		OpenAIModel:  cfg.OpenAITTSModel,
		OpenAIVoice:  cfg.OpenAITTSVoice,
	})
	if err != nil {
		return nil, &ConfigurationError{Setting: "audio.provider", Reason: err.Error()}
	}

	assembler, err := video.NewAssembler(&video.Config{
		Resolution: video.Resolution{Width: cfg.Width, Height: cfg.Height},
		FPS:        cfg.FPS,
		OutputDir:  cfg.VideoDir,
	})
	if err != nil {
		return nil, &ConfigurationError{Setting: "ffmpeg", Reason: err.Error()}
	}

	cacheStore, err := cache.New(cfg.CacheDir)
	if err != nil {
		return nil, &ConfigurationError{Setting: "cache.dir", Reason: err.Error()}
	}

	var historyStore *history.Store
	if !cfg.HistoryOff {
		historyStore, err = history.Open(cfg.HistoryPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.HistoryPath).Msg("subject history unavailable")
			historyStore = nil
		}
	}

	unsplash, err := image.NewUnsplashClient(cfg.UnsplashKey)
	if err != nil {
		return nil, &ConfigurationError{Setting: "UNSPLASH_ACCESS_KEY", Reason: err.Error()}
	}
	chain := image.NewFallbackChain(
		[]image.Searcher{image.NewWikimediaClient(), unsplash},
		cacheStore,
		cfg.RefreshCache,
	)
	downloadOpts := image.DefaultDownloadOptions()
	downloadOpts.OutputDir = cfg.ImageDir

	return &Pipeline{
		config:  cfg,
		facts:   factsProvider,
		images:  image.NewSourcer(chain, image.NewDownloader(downloadOpts)),
		audio:   audioProvider,
		video:   assembler,
		sender:  whatsapp.NewClient(&whatsapp.Config{BaseURL: cfg.WhatsAppBaseURL, Session: cfg.WhatsAppSession}),
		cache:   cacheStore,
		history: historyStore,
		probe:   video.EnsureMinDuration,
	}, nil
}

// Close releases pipeline resources.
func (p *Pipeline) Close() error {
	if p.history != nil {
		return p.history.Close()
	}
	return nil
}

// Run executes one full pipeline run. subjectArg is the caller-chosen
// subject; when empty a subject is requested from the fact provider.
// Cleanup runs no matter how far the run got.
func (p *Pipeline) Run(ctx context.Context, subjectArg string) (*Result, error) {
	started := time.Now()
	result := &Result{
		RunID:          uuid.NewString()[:8],
		StageDurations: make(map[State]time.Duration),
	}
	logger := logging.ForRun(result.RunID)

	runErr := p.execute(ctx, logger, result, subjectArg)

	result.State = StateCleanup
	p.cleanup(logger, result)

	result.Elapsed = time.Since(started)

	if runErr != nil {
		result.State = StateFailed
		logger.Error().
			Err(runErr).
			Str("subject", result.Subject).
			Dur("elapsed", result.Elapsed).
			Msg("run failed")
		return result, runErr
	}

	result.State = StateDone
	p.recordHistory(logger, result.Subject)
	logger.Info().
		Str("subject", result.Subject).
		Str("video", result.VideoPath).
		Bool("delivered", result.Delivered).
		Dur("elapsed", result.Elapsed).
		Msg("run complete")
	return result, nil
}

// execute walks the stages through delivery. It returns the first
// fatal error; delivery failures are recorded on the result instead.
func (p *Pipeline) execute(ctx context.Context, logger zerolog.Logger, result *Result, subjectArg string) error {
	var stem string

	if err := p.stage(logger, result, StateSelectingSubject, func() error {
		subject, err := p.selectSubject(ctx, logger, subjectArg)
		if err != nil {
			return err
		}
		result.Subject = subject
		stem = internal.SanitizeFilename(subject)
		logger.Info().Str("subject", subject).Msg("subject selected")
		return nil
	}); err != nil {
		return err
	}

	if err := p.stage(logger, result, StateGeneratingNarration, func() error {
		narration, err := p.narration(ctx, logger, result.Subject)
		if err != nil {
			return err
		}
		result.Narration = narration
		return nil
	}); err != nil {
		return err
	}

	if err := p.stage(logger, result, StateSourcingImages, func() error {
		paths, err := p.images.Source(ctx, result.Subject, p.config.MaxImages)
		if err != nil {
			var noContent *image.NoContentError
			if errors.As(err, &noContent) {
				return err
			}
			return &UpstreamServiceError{Service: "image sourcing", Err: err}
		}
		result.ImagePaths = paths
		logger.Info().Int("count", len(paths)).Msg("images downloaded")
		return nil
	}); err != nil {
		return err
	}

	if err := p.stage(logger, result, StateSynthesizingAudio, func() error {
		result.AudioPath = filepath.Join(p.config.AudioDir, stem+".wav")
		if err := p.audio.GenerateAudio(ctx, result.Narration, result.AudioPath); err != nil {
			return &UpstreamServiceError{Service: p.audio.Name() + " tts", Err: err}
		}
		duration, err := p.probe(ctx, result.AudioPath, p.config.MinDuration)
		if err != nil {
			return err
		}
		logger.Info().Float64("seconds", duration).Msg("narration synthesized")
		p.saveTimings(logger, result, duration)
		return nil
	}); err != nil {
		return err
	}

	if err := p.stage(logger, result, StateAssemblingVideo, func() error {
		videoPath, err := p.video.Assemble(ctx, result.AudioPath, result.ImagePaths, stem)
		if err != nil {
			return err
		}
		result.VideoPath = videoPath
		if _, err := p.probe(ctx, videoPath, p.config.MinDuration); err != nil {
			return err
		}
		logger.Info().Str("video", videoPath).Msg("video assembled")
		return nil
	}); err != nil {
		return err
	}

	return p.stage(logger, result, StateDelivering, func() error {
		if p.config.ChatID == "" {
			logger.Info().Msg("no delivery destination configured, skipping delivery")
			return nil
		}
		if err := p.sender.Send(ctx, result.VideoPath, p.config.ChatID, result.Narration); err != nil {
			result.DeliveryError = err
			logger.Warn().Err(err).Msg("delivery failed, video kept on disk")
			return nil
		}
		result.Delivered = true
		logger.Info().Str("chat_id", p.config.ChatID).Msg("video delivered")
		return nil
	})
}

// stage runs fn under the given state and records its duration.
func (p *Pipeline) stage(logger zerolog.Logger, result *Result, state State, fn func() error) error {
	result.State = state
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	result.StageDurations[state] = elapsed
	logger.Debug().Str("stage", string(state)).Dur("took", elapsed).Msg("stage finished")
	return err
}

func (p *Pipeline) selectSubject(ctx context.Context, logger zerolog.Logger, subjectArg string) (string, error) {
	if subject := strings.TrimSpace(subjectArg); subject != "" {
		return subject, nil
	}

	avoid := p.recentSubjects(logger)
	ctx, cancel := context.WithTimeout(ctx, factsTimeout)
	defer cancel()

	subject, err := p.facts.SuggestSubject(ctx, avoid)
	if err != nil {
		return "", &UpstreamServiceError{Service: p.facts.Name(), Err: err}
	}
	logger.Info().Str("subject", subject).Msg("subject suggested")
	return subject, nil
}

// recentSubjects returns the exclusion list for subject suggestions.
// History problems degrade to an empty list.
func (p *Pipeline) recentSubjects(logger zerolog.Logger) []string {
	if p.history == nil {
		return nil
	}
	recent, err := p.history.Recent(recentSubjectLimit)
	if err != nil {
		logger.Warn().Err(err).Msg("could not read subject history")
		return nil
	}
	return recent
}

func (p *Pipeline) narration(ctx context.Context, logger zerolog.Logger, subject string) (string, error) {
	if !p.config.RefreshCache {
		if text, ok := p.cache.Narration(subject); ok {
			logger.Info().Msg("using cached narration")
			return text, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, factsTimeout)
	defer cancel()

	text, err := p.facts.Describe(ctx, subject)
	if err != nil {
		return "", &UpstreamServiceError{Service: p.facts.Name(), Err: err}
	}
	p.cache.PutNarration(subject, text)
	return text, nil
}

// saveTimings writes estimated word timings next to the audio
// artifact. Failures are logged, never fatal.
func (p *Pipeline) saveTimings(logger zerolog.Logger, result *Result, audioDuration float64) {
	timings := audio.EstimateWordTimings(result.Narration, audioDuration)
	if len(timings) == 0 {
		return
	}
	if err := audio.SaveWordTimings(timings, result.AudioPath); err != nil {
		logger.Warn().Err(err).Msg("could not save word timings")
		return
	}
	result.TimingsPath = audio.TimingsPath(result.AudioPath)
}

// cleanup removes transient artifacts: the audio file always, the
// image set unless retention was requested. The video is never
// touched. Missing files are fine; a failed run may not have created
// them.
func (p *Pipeline) cleanup(logger zerolog.Logger, result *Result) {
	start := time.Now()

	if result.AudioPath != "" {
		removeArtifact(logger, "audio", result.AudioPath)
	}
	if len(result.ImagePaths) > 0 {
		if p.config.KeepImages {
			logger.Info().Int("count", len(result.ImagePaths)).Msg("keeping downloaded images")
		} else {
			for _, path := range result.ImagePaths {
				removeArtifact(logger, "image", path)
			}
		}
	}

	result.StageDurations[StateCleanup] = time.Since(start)
}

func removeArtifact(logger zerolog.Logger, kind, path string) {
	err := os.Remove(path)
	switch {
	case err == nil:
		logger.Debug().Str("path", path).Msgf("removed %s artifact", kind)
	case os.IsNotExist(err):
	default:
		logger.Warn().Err(err).Str("path", path).Msgf("could not remove %s artifact", kind)
	}
}

func (p *Pipeline) recordHistory(logger zerolog.Logger, subject string) {
	if p.history == nil {
		return
	}
	if err := p.history.Add(subject); err != nil {
		logger.Warn().Err(err).Msg("could not record subject in history")
	}
}
