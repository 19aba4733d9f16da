package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/okrause/faunareel/internal/config"
	"codeberg.org/okrause/faunareel/internal/history"
	"codeberg.org/okrause/faunareel/internal/image"
	"codeberg.org/okrause/faunareel/internal/testutil"
	"codeberg.org/okrause/faunareel/internal/video"
)

type fixture struct {
	pipeline *Pipeline
	config   *config.Config
	facts    *testutil.FactsProvider
	images   *testutil.ImageSourcer
	audio    *testutil.AudioProvider
	video    *testutil.VideoAssembler
	sender   *testutil.MessageSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		AudioDir:  filepath.Join(dir, "output_audio"),
		ImageDir:  filepath.Join(dir, "output_images"),
		VideoDir:  filepath.Join(dir, "output_video"),
		MaxImages: 25,
	}

	imagePaths, err := testutil.CreateImageSet(cfg.ImageDir, "test-subject", 3)
	if err != nil {
		t.Fatalf("creating image set: %v", err)
	}

	f := &fixture{
		config: cfg,
		facts: &testutil.FactsProvider{
			Suggestion: "Okapi",
			Narration:  "The okapi lives in dense rainforest. It has striped legs and a long tongue.",
		},
		images: &testutil.ImageSourcer{Paths: imagePaths},
		audio:  &testutil.AudioProvider{},
		video:  &testutil.VideoAssembler{OutputDir: cfg.VideoDir},
		sender: &testutil.MessageSender{},
	}

	f.pipeline = &Pipeline{
		config: cfg,
		facts:  f.facts,
		images: f.images,
		audio:  f.audio,
		video:  f.video,
		sender: f.sender,
		probe: func(ctx context.Context, path string, min time.Duration) (float64, error) {
			return 45, nil
		},
	}
	return f
}

func TestRunWithCallerSubjectSkipsSuggestion(t *testing.T) {
	f := newFixture(t)

	result, err := f.pipeline.Run(context.Background(), "Pangolin")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if f.facts.SuggestCalls != 0 {
		t.Errorf("suggestion service called %d times for a caller-supplied subject", f.facts.SuggestCalls)
	}
	if result.Subject != "Pangolin" {
		t.Errorf("subject = %q, want %q", result.Subject, "Pangolin")
	}
	if result.State != StateDone {
		t.Errorf("state = %q, want %q", result.State, StateDone)
	}
}

func TestRunSuggestsSubjectWhenMissing(t *testing.T) {
	f := newFixture(t)

	result, err := f.pipeline.Run(context.Background(), "  ")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if f.facts.SuggestCalls != 1 {
		t.Errorf("suggestion service called %d times, want 1", f.facts.SuggestCalls)
	}
	if result.Subject != "Okapi" {
		t.Errorf("subject = %q, want suggested %q", result.Subject, "Okapi")
	}
}

func TestRunArtifactPaths(t *testing.T) {
	f := newFixture(t)

	result, err := f.pipeline.Run(context.Background(), "sea otter")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantAudio := filepath.Join(f.config.AudioDir, "sea_otter.wav")
	if result.AudioPath != wantAudio {
		t.Errorf("audio path = %q, want %q", result.AudioPath, wantAudio)
	}
	wantVideo := filepath.Join(f.config.VideoDir, "sea_otter.mp4")
	if result.VideoPath != wantVideo {
		t.Errorf("video path = %q, want %q", result.VideoPath, wantVideo)
	}
	if f.audio.LastText != f.facts.Narration {
		t.Errorf("synthesized text = %q, want the narration", f.audio.LastText)
	}
	if len(f.video.LastImagePaths) != 3 {
		t.Errorf("assembler got %d images, want 3", len(f.video.LastImagePaths))
	}
}

func TestRunCleanupRemovesAudioKeepsVideo(t *testing.T) {
	f := newFixture(t)

	result, err := f.pipeline.Run(context.Background(), "Pangolin")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	testutil.AssertFileNotExists(t, result.AudioPath)
	testutil.AssertFileExists(t, result.VideoPath)
	for _, img := range result.ImagePaths {
		testutil.AssertFileNotExists(t, img)
	}
}

func TestRunCleanupOnFailure(t *testing.T) {
	f := newFixture(t)
	f.video.Err = &video.EncodingError{Path: "x.mp4", Err: errors.New("exit status 1")}

	result, err := f.pipeline.Run(context.Background(), "Pangolin")
	if err == nil {
		t.Fatal("expected run to fail")
	}

	var encErr *video.EncodingError
	if !errors.As(err, &encErr) {
		t.Errorf("error %v should unwrap to EncodingError", err)
	}
	if result.State != StateFailed {
		t.Errorf("state = %q, want %q", result.State, StateFailed)
	}

	testutil.AssertFileNotExists(t, result.AudioPath)
	for _, img := range result.ImagePaths {
		testutil.AssertFileNotExists(t, img)
	}
}

func TestRunKeepImages(t *testing.T) {
	for _, failing := range []bool{false, true} {
		f := newFixture(t)
		f.config.KeepImages = true
		if failing {
			f.video.Err = errors.New("encode failed")
		}

		result, err := f.pipeline.Run(context.Background(), "Pangolin")
		if failing && err == nil {
			t.Fatal("expected run to fail")
		}
		if !failing && err != nil {
			t.Fatalf("Run: %v", err)
		}

		for _, img := range result.ImagePaths {
			testutil.AssertFileExists(t, img)
		}
		testutil.AssertFileNotExists(t, result.AudioPath)
	}
}

func TestRunSkipsDeliveryWithoutDestination(t *testing.T) {
	f := newFixture(t)
	f.config.ChatID = ""

	result, err := f.pipeline.Run(context.Background(), "Pangolin")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if f.sender.Calls != 0 {
		t.Errorf("sender called %d times with no destination", f.sender.Calls)
	}
	if result.State != StateDone {
		t.Errorf("state = %q, want %q", result.State, StateDone)
	}
	if result.Delivered {
		t.Error("run marked delivered without a destination")
	}
}

func TestRunDelivers(t *testing.T) {
	f := newFixture(t)
	f.config.ChatID = "12345@c.us"

	result, err := f.pipeline.Run(context.Background(), "Pangolin")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if f.sender.Calls != 1 {
		t.Fatalf("sender called %d times, want 1", f.sender.Calls)
	}
	if f.sender.LastChatID != "12345@c.us" {
		t.Errorf("chat id = %q", f.sender.LastChatID)
	}
	if f.sender.LastVideoPath != result.VideoPath {
		t.Errorf("delivered %q, want %q", f.sender.LastVideoPath, result.VideoPath)
	}
	if f.sender.LastCaption != result.Narration {
		t.Errorf("caption = %q, want the narration", f.sender.LastCaption)
	}
	if !result.Delivered {
		t.Error("result not marked delivered")
	}
}

func TestRunDeliveryFailureStillDone(t *testing.T) {
	f := newFixture(t)
	f.config.ChatID = "12345@c.us"
	f.sender.Err = errors.New("gateway returned status 500")

	result, err := f.pipeline.Run(context.Background(), "Pangolin")
	if err != nil {
		t.Fatalf("delivery failure must not fail the run, got %v", err)
	}

	if result.State != StateDone {
		t.Errorf("state = %q, want %q", result.State, StateDone)
	}
	if result.Delivered {
		t.Error("run marked delivered despite send error")
	}
	if result.DeliveryError == nil {
		t.Error("delivery error not recorded")
	}
	testutil.AssertFileExists(t, result.VideoPath)
}

func TestRunNoContent(t *testing.T) {
	f := newFixture(t)
	f.images.Err = &image.NoContentError{Subject: "Pangolin"}

	result, err := f.pipeline.Run(context.Background(), "Pangolin")
	if err == nil {
		t.Fatal("expected run to fail")
	}

	var noContent *image.NoContentError
	if !errors.As(err, &noContent) {
		t.Errorf("error %v should unwrap to NoContentError", err)
	}
	if result.State != StateFailed {
		t.Errorf("state = %q, want %q", result.State, StateFailed)
	}
	if f.audio.Calls != 0 {
		t.Error("audio synthesized despite empty image set")
	}
}

func TestRunAudioFailure(t *testing.T) {
	f := newFixture(t)
	f.audio.Err = errors.New("tts exited with status 1")

	result, err := f.pipeline.Run(context.Background(), "Pangolin")
	if err == nil {
		t.Fatal("expected run to fail")
	}

	var upstream *UpstreamServiceError
	if !errors.As(err, &upstream) {
		t.Fatalf("error %v should be an UpstreamServiceError", err)
	}
	if f.video.Calls != 0 {
		t.Error("video assembled despite audio failure")
	}
	if result.State != StateFailed {
		t.Errorf("state = %q, want %q", result.State, StateFailed)
	}
}

func TestRunShortAudioFails(t *testing.T) {
	f := newFixture(t)
	f.pipeline.probe = func(ctx context.Context, path string, min time.Duration) (float64, error) {
		return 3, errors.New("narration.wav runs 3.00s, below the 30s minimum")
	}

	_, err := f.pipeline.Run(context.Background(), "Pangolin")
	if err == nil {
		t.Fatal("expected run to fail on a short narration")
	}
	if f.video.Calls != 0 {
		t.Error("video assembled despite failed duration gate")
	}
}

func TestRunSuggestionFailure(t *testing.T) {
	f := newFixture(t)
	f.facts.SuggestErr = errors.New("upstream 503")

	result, err := f.pipeline.Run(context.Background(), "")
	if err == nil {
		t.Fatal("expected run to fail")
	}

	var upstream *UpstreamServiceError
	if !errors.As(err, &upstream) {
		t.Fatalf("error %v should be an UpstreamServiceError", err)
	}
	if result.State != StateFailed {
		t.Errorf("state = %q, want %q", result.State, StateFailed)
	}
	if f.facts.DescribeCalls != 0 {
		t.Error("narration generated despite failed subject selection")
	}
}

func TestRunWordTimings(t *testing.T) {
	f := newFixture(t)

	result, err := f.pipeline.Run(context.Background(), "Pangolin")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.TimingsPath == "" {
		t.Fatal("no timings path recorded")
	}
	testutil.AssertFileExists(t, result.TimingsPath)
	testutil.AssertFileContains(t, result.TimingsPath, "okapi")
}

func TestRunStageDurations(t *testing.T) {
	f := newFixture(t)

	result, err := f.pipeline.Run(context.Background(), "Pangolin")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, state := range []State{
		StateSelectingSubject,
		StateGeneratingNarration,
		StateSourcingImages,
		StateSynthesizingAudio,
		StateAssemblingVideo,
		StateDelivering,
		StateCleanup,
	} {
		if _, ok := result.StageDurations[state]; !ok {
			t.Errorf("no duration recorded for stage %q", state)
		}
	}
}

func TestRunHistoryExclusionsAndRecording(t *testing.T) {
	f := newFixture(t)

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}
	defer store.Close()
	f.pipeline.history = store

	for _, past := range []string{"Aardvark", "Axolotl"} {
		if err := store.Add(past); err != nil {
			t.Fatalf("seeding history: %v", err)
		}
	}

	if _, err := f.pipeline.Run(context.Background(), ""); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(f.facts.LastAvoid) != 2 {
		t.Fatalf("exclusion list = %v, want the two seeded subjects", f.facts.LastAvoid)
	}

	recent, err := store.Recent(10)
	if err != nil {
		t.Fatalf("reading history: %v", err)
	}
	if len(recent) == 0 || recent[0] != "Okapi" {
		t.Errorf("history after run = %v, want %q first", recent, "Okapi")
	}
}
