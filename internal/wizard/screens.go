package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/domain"
)

var (
	ErrUnknownEmotion  = errors.New("wizard: emotion is not in the catalog")
	ErrRequestInFlight = errors.New("wizard: a response is already being generated")
)

// Generator produces the text shown on the analysis and response screens.
type Generator interface {
	Respond(ctx context.Context, req domain.ResponseRequest) domain.ResponseResult
}

// EmotionSelectionScreen collects the emotion and its intensity.
type EmotionSelectionScreen struct {
	flow      *Flow
	mount     *Mount
	selected  domain.Emotion
	custom    string
	intensity domain.Intensity
	detailed  bool
}

func MountEmotionSelection(f *Flow) (*EmotionSelectionScreen, error) {
	m, err := f.mountFor(StepEmotionSelection)
	if err != nil {
		return nil, err
	}
	return &EmotionSelectionScreen{
		flow:      f,
		mount:     m,
		intensity: domain.DefaultIntensity,
	}, nil
}

// Emotions lists the emotions currently offered.
func (s *EmotionSelectionScreen) Emotions() []domain.Emotion {
	if s.detailed {
		return append(domain.BaseEmotions(), domain.DetailedEmotions()...)
	}
	return domain.BaseEmotions()
}

func (s *EmotionSelectionScreen) ToggleDetailed() {
	s.detailed = !s.detailed
}

// Select picks an emotion from the offered catalog. Re-selecting replaces
// the previous choice.
func (s *EmotionSelectionScreen) Select(name string) error {
	for _, e := range s.Emotions() {
		if strings.EqualFold(e.Name, strings.TrimSpace(name)) {
			s.selected = e
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownEmotion, name)
}

func (s *EmotionSelectionScreen) SetCustomEmotion(text string) {
	s.custom = strings.TrimSpace(text)
}

func (s *EmotionSelectionScreen) SetIntensity(v int) error {
	i, err := domain.NewIntensity(v)
	if err != nil {
		return err
	}
	s.intensity = i
	return nil
}

func (s *EmotionSelectionScreen) Selected() domain.Emotion {
	return s.selected
}

func (s *EmotionSelectionScreen) Intensity() domain.Intensity {
	return s.intensity
}

// Emotion is the emotion that Continue will pass on.
func (s *EmotionSelectionScreen) Emotion() domain.Emotion {
	if s.selected.IsOther() {
		if s.custom == "" {
			return domain.Emotion{}
		}
		return domain.CustomEmotion(s.custom)
	}
	return s.selected
}

func (s *EmotionSelectionScreen) CanContinue() bool {
	return !s.Emotion().IsZero()
}

func (s *EmotionSelectionScreen) Continue() error {
	if !s.CanContinue() {
		return fmt.Errorf("%w: select an emotion", ErrGuardNotSatisfied)
	}
	params := s.mount.Params.
		With(KeyEmotion, s.Emotion()).
		With(KeyIntensity, s.intensity)
	return s.flow.navigateFrom(s.mount, StepRecordingMethod, params)
}

// RecordingMethodScreen collects the written note.
type RecordingMethodScreen struct {
	flow      *Flow
	mount     *Mount
	emotion   domain.Emotion
	intensity domain.Intensity
	text      string
	recording bool
}

func MountRecordingMethod(f *Flow) (*RecordingMethodScreen, error) {
	m, err := f.mountFor(StepRecordingMethod)
	if err != nil {
		return nil, err
	}
	emotion, err := m.Params.Emotion()
	if err != nil {
		return nil, err
	}
	intensity, err := m.Params.Intensity()
	if err != nil {
		return nil, err
	}
	return &RecordingMethodScreen{
		flow:      f,
		mount:     m,
		emotion:   emotion,
		intensity: intensity,
	}, nil
}

func (s *RecordingMethodScreen) Emotion() domain.Emotion {
	return s.emotion
}

func (s *RecordingMethodScreen) SetText(text string) {
	s.text = text
}

// ToggleVoiceRecording flips the recording indicator and returns it. Audio
// capture is not wired, so the note is always the typed text.
func (s *RecordingMethodScreen) ToggleVoiceRecording() bool {
	s.recording = !s.recording
	return s.recording
}

func (s *RecordingMethodScreen) CanContinue() bool {
	return strings.TrimSpace(s.text) != ""
}

func (s *RecordingMethodScreen) Continue() error {
	if !s.CanContinue() {
		return fmt.Errorf("%w: %w", ErrGuardNotSatisfied, domain.ErrEmptyContent)
	}
	params := s.mount.Params.
		With(KeyContent, strings.TrimSpace(s.text)).
		With(KeyIsVoiceNote, false)
	return s.flow.navigateFrom(s.mount, StepAnalysis, params)
}

// AnalysisScreen shows a summary of the note and collects the options for
// the response.
type AnalysisScreen struct {
	flow  *Flow
	mount *Mount
	gen   Generator

	emotion     domain.Emotion
	intensity   domain.Intensity
	content     string
	isVoiceNote bool

	summary      string
	advisor      domain.AdvisorPerspective
	recipient    domain.Recipient
	scenario     string
	addendum     string
	saveJournal  bool
	responseType domain.ResponseType
}

func MountAnalysis(f *Flow, gen Generator) (*AnalysisScreen, error) {
	m, err := f.mountFor(StepAnalysis)
	if err != nil {
		return nil, err
	}
	emotion, err := m.Params.Emotion()
	if err != nil {
		return nil, err
	}
	intensity, err := m.Params.Intensity()
	if err != nil {
		return nil, err
	}
	content, err := m.Params.Content()
	if err != nil {
		return nil, err
	}
	return &AnalysisScreen{
		flow:         f,
		mount:        m,
		gen:          gen,
		emotion:      emotion,
		intensity:    intensity,
		content:      content,
		isVoiceNote:  m.Params.IsVoiceNote(),
		saveJournal:  true,
		responseType: domain.ResponseLogged,
	}, nil
}

// LoadSummary asks the generator for a summary of the note. It blocks for
// the duration of the call, which ends if the screen is left.
func (s *AnalysisScreen) LoadSummary() domain.ResponseResult {
	if s.gen == nil {
		return domain.ResponseResult{}
	}
	res := s.gen.Respond(s.mount.Context(), domain.ResponseRequest{
		Emotion:   s.emotion.Name,
		Intensity: s.intensity,
		Content:   s.content,
		Type:      domain.ResponseSummary,
	})
	if s.mount.Active() && !res.Failed() {
		s.summary = res.Text
	}
	return res
}

func (s *AnalysisScreen) Summary() string {
	return s.summary
}

func (s *AnalysisScreen) SelectAdvisor(a domain.AdvisorPerspective) error {
	if a != "" && !a.IsValid() {
		return fmt.Errorf("wizard: unknown advisor perspective %q", a)
	}
	s.advisor = a
	return nil
}

func (s *AnalysisScreen) SelectRecipient(r domain.Recipient) error {
	if r != "" && !r.IsValid() {
		return fmt.Errorf("wizard: unknown recipient %q", r)
	}
	s.recipient = r
	return nil
}

func (s *AnalysisScreen) SetScenario(text string) {
	s.scenario = strings.TrimSpace(text)
}

func (s *AnalysisScreen) SetAddendum(text string) {
	s.addendum = strings.TrimSpace(text)
}

func (s *AnalysisScreen) ToggleSaveToJournal() bool {
	s.saveJournal = !s.saveJournal
	return s.saveJournal
}

func (s *AnalysisScreen) SetSaveToJournal(save bool) {
	s.saveJournal = save
}

func (s *AnalysisScreen) ChooseResponseType(t domain.ResponseType) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownResponseType, t)
	}
	s.responseType = t
	return nil
}

// Continue builds the journal entry snapshot and moves to the response.
func (s *AnalysisScreen) Continue() error {
	entry, err := domain.NewJournalEntry(domain.JournalDraft{
		Emotion:            s.emotion,
		Intensity:          s.intensity,
		Content:            s.content,
		IsVoiceNote:        s.isVoiceNote,
		AISummary:          s.summary,
		AdvisorPerspective: s.advisor,
		Recipient:          s.recipient,
		IsLogged:           s.saveJournal,
	}, s.flow.Now())
	if err != nil {
		return err
	}

	params := NewParams().
		With(KeyJournalEntry, entry).
		With(KeyResponseType, s.responseType)
	if s.scenario != "" {
		params = params.With(KeyScenario, s.scenario)
	}
	if s.addendum != "" {
		params = params.With(KeyAddendum, s.addendum)
	}

	if err := s.flow.navigateFrom(s.mount, StepAIResponse, params); err != nil {
		return err
	}
	if entry.IsLogged {
		s.flow.Record(entry)
	}
	return nil
}

// AIResponseScreen generates the response for the entry. At most one call
// is outstanding; its lifetime is the screen's mount.
type AIResponseScreen struct {
	flow   *Flow
	mount  *Mount
	gen    Generator
	logger *zap.Logger

	entry    domain.JournalEntry
	request  domain.ResponseRequest
	wg       conc.WaitGroup
	mu       sync.Mutex
	loading  bool
	done     chan struct{}
	result   domain.ResponseResult
	hasValue bool
}

// MountAIResponse mounts the screen and starts the first generation.
func MountAIResponse(f *Flow, gen Generator) (*AIResponseScreen, error) {
	m, err := f.mountFor(StepAIResponse)
	if err != nil {
		return nil, err
	}
	entry, err := m.Params.Entry()
	if err != nil {
		return nil, err
	}
	rt, err := m.Params.ResponseType()
	if err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, fmt.Errorf("wizard: response screen needs a generator")
	}

	req := domain.RequestFromEntry(entry, rt)
	req.Scenario = m.Params.OptionalString(KeyScenario)
	req.Addendum = m.Params.OptionalString(KeyAddendum)

	s := &AIResponseScreen{
		flow:    f,
		mount:   m,
		gen:     gen,
		logger:  f.logger,
		entry:   entry,
		request: req,
	}
	if err := s.Generate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Mounted reports whether the screen is still the mounted step.
func (s *AIResponseScreen) Mounted() bool {
	return s.mount.Active()
}

func (s *AIResponseScreen) Request() domain.ResponseRequest {
	return s.request
}

func (s *AIResponseScreen) Entry() domain.JournalEntry {
	return s.entry
}

// Generate starts one call. It fails while a call is in flight or after the
// screen was left.
func (s *AIResponseScreen) Generate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mount.Active() {
		return ErrNotMounted
	}
	if s.loading {
		return ErrRequestInFlight
	}

	s.loading = true
	done := make(chan struct{})
	s.done = done
	ctx := s.mount.Context()
	req := s.request

	s.wg.Go(func() {
		defer close(done)
		res := s.gen.Respond(ctx, req)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.loading = false
		if !s.mount.Active() {
			s.logger.Debug("Discarding response for unmounted screen",
				zap.String("entry_id", s.entry.ID),
			)
			return
		}
		s.result = res
		s.hasValue = true
	})
	return nil
}

// Regenerate replaces the current response with a new one.
func (s *AIResponseScreen) Regenerate() error {
	return s.Generate()
}

func (s *AIResponseScreen) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Result returns the response once available. Nothing is returned after
// the screen has been left.
func (s *AIResponseScreen) Result() (domain.ResponseResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasValue || !s.mount.Active() {
		return domain.ResponseResult{}, false
	}
	return s.result, true
}

// Await blocks until the current call finishes or ctx is done.
func (s *AIResponseScreen) Await(ctx context.Context) (domain.ResponseResult, bool) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return domain.ResponseResult{}, false
		}
	}
	return s.Result()
}

// Drain waits for every call started by this screen to return.
func (s *AIResponseScreen) Drain() {
	s.wg.Wait()
}

// Continue is always available, even while a call is in flight; leaving the
// screen cancels it.
func (s *AIResponseScreen) Continue() error {
	params := NewParams().With(KeyJournalEntry, s.entry)
	if res, ok := s.Result(); ok {
		params = params.With(KeyResponse, res)
	}
	return s.flow.navigateFrom(s.mount, StepGratitude, params)
}

// GratitudeScreen closes the entry.
type GratitudeScreen struct {
	flow     *Flow
	mount    *Mount
	entry    domain.JournalEntry
	response domain.ResponseResult
	hasResp  bool
}

func MountGratitude(f *Flow) (*GratitudeScreen, error) {
	m, err := f.mountFor(StepGratitude)
	if err != nil {
		return nil, err
	}
	entry, err := m.Params.Entry()
	if err != nil {
		return nil, err
	}
	resp, ok := m.Params.Response()
	return &GratitudeScreen{
		flow:     f,
		mount:    m,
		entry:    entry,
		response: resp,
		hasResp:  ok,
	}, nil
}

func (s *GratitudeScreen) Entry() domain.JournalEntry {
	return s.entry
}

func (s *GratitudeScreen) Response() (domain.ResponseResult, bool) {
	return s.response, s.hasResp
}

// StartNewEntry returns to the first step, discarding the accumulated state.
func (s *GratitudeScreen) StartNewEntry() error {
	return s.flow.navigateFrom(s.mount, StepEmotionSelection, NewParams())
}

func (s *GratitudeScreen) ViewProfile() error {
	return s.flow.navigateFrom(s.mount, StepProfile, NewParams())
}

// ProfileScreen shows statistics over the entries saved this session.
type ProfileScreen struct {
	flow  *Flow
	mount *Mount
}

func MountProfile(f *Flow) (*ProfileScreen, error) {
	m, err := f.mountFor(StepProfile)
	if err != nil {
		return nil, err
	}
	return &ProfileScreen{flow: f, mount: m}, nil
}

func (s *ProfileScreen) Overview() domain.ProfileOverview {
	return BuildProfileOverview(s.flow.History())
}

func (s *ProfileScreen) StartNewEntry() error {
	return s.flow.navigateFrom(s.mount, StepEmotionSelection, NewParams())
}
