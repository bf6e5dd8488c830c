package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/barbearia-labs/barber-ai-platform/internal/appointments"
	"github.com/barbearia-labs/barber-ai-platform/internal/booking"
	"github.com/barbearia-labs/barber-ai-platform/internal/clients"
	"github.com/barbearia-labs/barber-ai-platform/internal/observability/metrics"
	"github.com/barbearia-labs/barber-ai-platform/pkg/logging"
)

// TurnRequest is one conversational turn from the caller.
type TurnRequest struct {
	Message             string        `json:"message"`
	BarbershopID        uuid.UUID     `json:"barbershopId"`
	ConversationHistory []ChatMessage `json:"conversationHistory"`
	SessionID           string        `json:"sessionId,omitempty"`
}

// ActionResult reports a committed appointment on a final turn.
type ActionResult struct {
	Success       bool                 `json:"success"`
	AppointmentID uuid.UUID            `json:"appointmentId"`
	Appointment   *booking.Appointment `json:"appointment"`
}

// TurnResponse is the engine's reply for one turn.
type TurnResponse struct {
	Message              string        `json:"message"`
	RequiresConfirmation bool          `json:"requiresConfirmation,omitempty"`
	ActionResult         *ActionResult `json:"actionResult,omitempty"`
	SessionID            string        `json:"sessionId"`
}

// Service processes conversation turns. The HTTP handler talks to this
// interface so the queue-backed dispatcher can stand in front of the engine.
type Service interface {
	ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error)
}

// Read-side collaborators, narrowed to what the engine consumes so tests can
// fake them without a database.
type catalogReader interface {
	Services(ctx context.Context, shopID uuid.UUID) ([]booking.Service, error)
	Employees(ctx context.Context, shopID uuid.UUID) ([]booking.Employee, error)
	SchedulesForDay(ctx context.Context, shopID uuid.UUID, weekday time.Weekday) ([]booking.Schedule, error)
	BreaksForDay(ctx context.Context, shopID uuid.UUID, date time.Time) ([]booking.Break, error)
}

type appointmentReader interface {
	ListBlockingForDay(ctx context.Context, employeeID uuid.UUID, date time.Time) ([]booking.Appointment, error)
}

type profileFinder interface {
	FindByPhone(ctx context.Context, shopID uuid.UUID, phone string) (*clients.Profile, error)
}

type committer interface {
	Commit(ctx context.Context, req appointments.CommitRequest) (*booking.Appointment, error)
}

const genericApology = "Desculpe, tive um problema aqui. Pode tentar de novo em instantes?"

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Catalog      catalogReader
	Appointments appointmentReader
	Committer    committer
	Profiles     profileFinder
	Sessions     *SessionStore
	Checker      *booking.Checker
	LLM          LLMClient // optional; nil means structured replies only
	Location     *time.Location
	Logger       *logging.Logger
	Metrics      *metrics.ChatMetrics
}

// Engine runs the turn pipeline: session load, entity extraction,
// availability check, confirmation gate, commit. It is stateless between
// invocations; everything that survives a turn lives in the session store.
type Engine struct {
	catalog      catalogReader
	appointments appointmentReader
	committer    committer
	profiles     profileFinder
	sessions     *SessionStore
	checker      *booking.Checker
	llm          LLMClient
	loc          *time.Location
	logger       *logging.Logger
	metrics      *metrics.ChatMetrics

	now func() time.Time
}

var _ Service = (*Engine)(nil)

// NewEngine constructs the turn engine.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Catalog == nil {
		panic("conversation: catalog reader cannot be nil")
	}
	if cfg.Appointments == nil {
		panic("conversation: appointment reader cannot be nil")
	}
	if cfg.Committer == nil {
		panic("conversation: committer cannot be nil")
	}
	if cfg.Sessions == nil {
		panic("conversation: session store cannot be nil")
	}
	if cfg.Checker == nil {
		cfg.Checker = booking.NewChecker()
	}
	if cfg.Location == nil {
		cfg.Location = BusinessLocation("")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	e := &Engine{
		catalog:      cfg.Catalog,
		appointments: cfg.Appointments,
		committer:    cfg.Committer,
		profiles:     cfg.Profiles,
		sessions:     cfg.Sessions,
		checker:      cfg.Checker,
		llm:          cfg.LLM,
		loc:          cfg.Location,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
	}
	e.now = func() time.Time { return time.Now().In(e.loc) }
	return e
}

// ProcessTurn runs one full pipeline pass. Recoverable situations (missing
// fields, ambiguous time, occupied slot, race lost at commit) come back as
// replies, never as errors; only a malformed request yields an error.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	started := e.now()

	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("conversation: empty message")
	}
	if req.BarbershopID == uuid.Nil {
		return nil, errors.New("conversation: barbershop id required")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := e.now()

	sess, err := e.sessions.Load(ctx, sessionID, now)
	if err != nil {
		// Prior context is a convenience; a broken session read degrades
		// to a fresh conversation rather than failing the turn.
		e.logger.Error("failed to load session", "error", err, "session_id", sessionID)
		sess = nil
	}
	if sess == nil {
		sess = &Session{ID: sessionID, BarbershopID: req.BarbershopID, Status: SessionActive}
	}

	services, err := e.catalog.Services(ctx, req.BarbershopID)
	if err != nil {
		return e.infraFailure(ctx, sessionID, "failed to load services", err, started)
	}
	employees, err := e.catalog.Employees(ctx, req.BarbershopID)
	if err != nil {
		return e.infraFailure(ctx, sessionID, "failed to load employees", err, started)
	}
	if len(employees) == 0 {
		reply := "Estamos sem barbeiros disponíveis no momento. Pode tentar novamente mais tarde?"
		return e.respond(sessionID, reply, false, nil, "no_employees", started), nil
	}

	draft, dateSource := e.extract(ctx, req, sess, services, employees, now)

	if dateSource == SourceMessage || dateSource == SourceSession {
		if err := e.sessions.SetDate(ctx, sess, *draft.Date); err != nil {
			e.logger.Error("failed to persist session date", "error", err, "session_id", sessionID)
		}
	}
	if err := e.sessions.Touch(ctx, sess, now); err != nil {
		e.logger.Error("failed to touch session", "error", err, "session_id", sessionID)
	}

	if draft.TimeAmbiguous {
		hour := strings.SplitN(draft.Clock, ":", 2)[0]
		reply := fmt.Sprintf(
			"Só para confirmar: %s da manhã ou da tarde?", strings.TrimPrefix(hour, "0"))
		return e.respond(sessionID, reply, false, nil, "ambiguous_time", started), nil
	}

	if missing := draft.MissingFields(); len(missing) > 0 {
		reply := e.narrate(ctx, req, missingFieldsReply(missing), missing)
		return e.respond(sessionID, reply, false, nil, "collecting", started), nil
	}

	result, err := e.checkAvailability(ctx, req.BarbershopID, draft, employees)
	if err != nil {
		return e.infraFailure(ctx, sessionID, "availability check failed", err, started)
	}

	switch result.State {
	case booking.StateNotWorking:
		reply := fmt.Sprintf("%s não atende %s. Quer tentar outro dia?",
			result.Employee.Name, FormatDateLong(*draft.Date))
		return e.respond(sessionID, reply, false, nil, "not_working", started), nil

	case booking.StateOutOfHours:
		reply := fmt.Sprintf("%s está fora do horário de atendimento de %s nesse dia.",
			draft.Clock, result.Employee.Name)
		return e.respond(sessionID, reply, false, nil, "out_of_hours", started), nil

	case booking.StateConflict:
		e.metrics.ObserveConflict()
		reply := conflictReply(result)
		return e.respond(sessionID, reply, false, nil, "conflict", started), nil
	}

	// Slot is free. The chosen employee (possibly resolved by the fallback
	// scan) becomes part of the draft.
	draft.Employee = &result.Employee

	prev := LastRecap(req.ConversationHistory)
	if prev != nil && IsConfirmation(req.Message) {
		return e.commit(ctx, sessionID, sess, draft, started)
	}

	if prev != nil {
		if delta := DiffRecap(*prev, draft); delta.Any() {
			reply := DeltaReply(delta, draft, ReadsAsQuestion(req.Message)) +
				"\n\n" + BuildRecap(draft)
			return e.respond(sessionID, reply, true, nil, "awaiting_confirmation", started), nil
		}
	}

	return e.respond(sessionID, BuildRecap(draft), true, nil, "awaiting_confirmation", started), nil
}

// extract resolves every draft field from the message, history, session and
// client profile, in that precedence.
func (e *Engine) extract(ctx context.Context, req TurnRequest, sess *Session, services []booking.Service, employees []booking.Employee, now time.Time) (Draft, DateSource) {
	var draft Draft

	tm := ExtractTime(req.Message)
	if tm == nil {
		for i := len(req.ConversationHistory) - 1; i >= 0 && tm == nil; i-- {
			if req.ConversationHistory[i].Role == ChatRoleUser {
				tm = ExtractTime(req.ConversationHistory[i].Content)
			}
		}
		// A bare period word in the current message answers the clarifying
		// question about an ambiguous hour carried in history.
		if tm != nil && tm.Ambiguous {
			if period := ExtractPeriod(req.Message); period != "" {
				if resolved := ResolvePeriod(tm.Clock, period); resolved != nil {
					tm = resolved
				}
			}
		}
	}
	if tm != nil {
		draft.Clock = tm.Clock
		draft.TimeAmbiguous = tm.Ambiguous
	}

	date, dateSource := ExtractDate(req.Message, req.ConversationHistory, sess.CurrentDate, now)
	draft.Date = &date

	draft.Employee = ExtractEmployee(req.Message, req.ConversationHistory, employees)
	draft.Service = ExtractService(req.Message, req.ConversationHistory, services)

	draft.ClientName = ExtractName(req.Message, req.ConversationHistory)
	draft.ClientPhone = ExtractPhone(req.Message, req.ConversationHistory)
	if draft.ClientPhone == "" {
		draft.ClientPhone = sess.ClientPhone
	}
	if draft.ClientName == "" {
		draft.ClientName = sess.ClientName
	}

	// A profile match by phone recognizes a returning client; its stored
	// name wins over anything parsed from free text.
	if draft.ClientPhone != "" && e.profiles != nil {
		profile, err := e.profiles.FindByPhone(ctx, req.BarbershopID, draft.ClientPhone)
		if err != nil {
			e.logger.Error("client profile lookup failed", "error", err)
		} else if profile != nil {
			draft.ClientName = profile.Name
			id := profile.ID
			sess.ClientProfileID = &id
		}
	}

	sess.ClientPhone = draft.ClientPhone
	sess.ClientName = draft.ClientName
	return draft, dateSource
}

// checkAvailability builds day sheets and runs the checker. With a named
// employee only that one is checked; otherwise every employee is tried in
// stable catalog order and the first free one wins.
func (e *Engine) checkAvailability(ctx context.Context, shopID uuid.UUID, draft Draft, employees []booking.Employee) (booking.Result, error) {
	candidates := employees
	if draft.Employee != nil {
		candidates = []booking.Employee{*draft.Employee}
	}

	date := *draft.Date
	schedules, err := e.catalog.SchedulesForDay(ctx, shopID, date.Weekday())
	if err != nil {
		return booking.Result{}, err
	}
	breaks, err := e.catalog.BreaksForDay(ctx, shopID, date)
	if err != nil {
		return booking.Result{}, err
	}

	sheets := make(map[uuid.UUID]booking.DaySheet, len(candidates))
	for _, emp := range candidates {
		appts, err := e.appointments.ListBlockingForDay(ctx, emp.ID, date)
		if err != nil {
			return booking.Result{}, err
		}
		sheets[emp.ID] = booking.DaySheet{
			Schedules:    schedules,
			Breaks:       breaks,
			Appointments: appts,
		}
	}

	return e.checker.FirstAvailable(candidates, date, draft.Clock, draft.Service.DurationMinutes, sheets), nil
}

// commit runs the final stage: the race re-check and insert live in the
// appointments service; this layer translates the outcome into a reply and
// closes out the session on success.
func (e *Engine) commit(ctx context.Context, sessionID string, sess *Session, draft Draft, started time.Time) (*TurnResponse, error) {
	appt, err := e.committer.Commit(ctx, appointments.CommitRequest{
		BarbershopID:    sess.BarbershopID,
		EmployeeID:      draft.Employee.ID,
		ServiceID:       draft.Service.ID,
		ClientName:      draft.ClientName,
		ClientPhone:     draft.ClientPhone,
		ClientProfileID: sess.ClientProfileID,
		Date:            *draft.Date,
		Start:           draft.Clock,
		DurationMinutes: draft.Service.DurationMinutes,
	})
	if errors.Is(err, appointments.ErrSlotTaken) {
		e.metrics.ObserveBooking("race_lost")
		reply := fmt.Sprintf(
			"Poxa, o horário das %s acabou de ser reservado por outra pessoa. Quer escolher outro horário?",
			draft.Clock)
		return e.respond(sessionID, reply, false, nil, "race_lost", started), nil
	}
	if err != nil {
		e.metrics.ObserveBooking("error")
		return e.infraFailure(ctx, sessionID, "appointment insert failed", err, started)
	}

	if err := e.sessions.Complete(ctx, sess); err != nil {
		e.logger.Error("failed to complete session", "error", err, "session_id", sessionID)
	}

	e.metrics.ObserveBooking("committed")
	reply := fmt.Sprintf("Agendamento confirmado! %s com %s, %s às %s. Até lá!",
		draft.Service.Name, draft.Employee.Name, FormatDateLong(*draft.Date), draft.Clock)
	action := &ActionResult{Success: true, AppointmentID: appt.ID, Appointment: appt}
	return e.respond(sessionID, reply, false, action, "committed", started), nil
}

// narrate optionally rewrites a structured reply through the LLM for tone,
// then runs the guard: narrative text never gets to claim a booking the
// structured state did not make.
func (e *Engine) narrate(ctx context.Context, req TurnRequest, structured string, missing []string) string {
	if e.llm == nil {
		return structured
	}

	msgs := make([]ChatMessage, 0, len(req.ConversationHistory)+1)
	msgs = append(msgs, req.ConversationHistory...)
	msgs = append(msgs, ChatMessage{Role: ChatRoleUser, Content: req.Message})

	resp, err := e.llm.Complete(ctx, LLMRequest{
		System: []string{
			"Você é o assistente de agendamento de uma barbearia. Responda em português, curto e cordial.",
			"Nunca afirme que um agendamento foi criado ou confirmado.",
			"Peça exatamente estes dados que ainda faltam: " + strings.Join(missing, ", ") + ".",
		},
		Messages:    msgs,
		MaxTokens:   256,
		Temperature: 0.4,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		e.logger.Error("narrative generation failed, using structured reply", "error", err)
		return structured
	}

	guarded := GuardReply(resp.Text, missing, false)
	if guarded.Overridden {
		e.metrics.ObserveGuardOverride()
	}
	return guarded.Reply
}

func (e *Engine) infraFailure(_ context.Context, sessionID, msg string, err error, started time.Time) (*TurnResponse, error) {
	e.logger.Error(msg, "error", err, "session_id", sessionID)
	return e.respond(sessionID, genericApology, false, nil, "infra_error", started), nil
}

func (e *Engine) respond(sessionID, message string, awaiting bool, action *ActionResult, state string, started time.Time) *TurnResponse {
	e.metrics.ObserveTurn(state, e.now().Sub(started).Seconds())
	return &TurnResponse{
		Message:              message,
		RequiresConfirmation: awaiting,
		ActionResult:         action,
		SessionID:            sessionID,
	}
}

func conflictReply(result booking.Result) string {
	if len(result.Alternatives) == 0 {
		return fmt.Sprintf("O horário das %s já está ocupado e não encontrei outro horário livre nesse dia. Quer tentar outra data?",
			result.Time)
	}
	return fmt.Sprintf("O horário das %s já está ocupado com %s. Tenho livre: %s. Algum desses serve?",
		result.Time, result.Employee.Name, strings.Join(result.Alternatives, ", "))
}
