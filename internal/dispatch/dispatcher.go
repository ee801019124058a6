package dispatch

import (
	"bus-schedule-bot/internal/action"
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/ingest"
	"bus-schedule-bot/internal/platform/obs"
	"bus-schedule-bot/internal/ports"
	"bus-schedule-bot/internal/services"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// The sender of an inbound event.
type User struct {
	ID   int64
	Name string
}

type handlerFunc func(ctx context.Context, u User, args []string) (services.Response, error)

type command struct {
	usage   string
	help    string
	minArgs int
	maxArgs int // -1: unbounded
	run     handlerFunc
}

// Dispatcher maps inbound commands, documents and button actions to the
// presentation and ingestion layers, and turns every failure into a
// user-facing response.
type Dispatcher struct {
	Presenter      *services.Presenter
	Drivers        ports.DriverRepository
	Ingest         *ingest.Service
	Location       *time.Location
	MaxUploadBytes int
	Now            func() time.Time

	commands map[string]command
	order    []string
}

func New(
	presenter *services.Presenter,
	drivers ports.DriverRepository,
	ingestSvc *ingest.Service,
	loc *time.Location,
) *Dispatcher {
	if loc == nil {
		loc = time.UTC
	}

	d := &Dispatcher{
		Presenter:      presenter,
		Drivers:        drivers,
		Ingest:         ingestSvc,
		Location:       loc,
		MaxUploadBytes: 10 << 20,
		Now:            time.Now,
	}
	d.register("start", command{usage: "/start", help: "Start the bot", run: d.start})
	d.register("help", command{usage: "/help", help: "Show this help", run: d.helpCmd})
	d.register("register", command{usage: "/register", help: "Register as a driver", run: d.registerDriver})
	d.register("schedule", command{usage: "/schedule [YYYY-MM-DD]", help: "Work schedule for today or a date", maxArgs: 1, run: d.schedule})
	d.register("routes", command{usage: "/routes", help: "List all bus routes", run: d.routes})
	d.register("route", command{usage: "/route <number>", help: "Details of a bus route", minArgs: 1, maxArgs: 1, run: d.route})
	d.register("navigate", command{usage: "/navigate <route> <from> <to>", help: "Directions between two stations (use -> for names with spaces)", minArgs: 3, maxArgs: -1, run: d.navigate})
	d.register("upload", command{usage: "/upload", help: "Upload a schedule (photo, PDF, spreadsheet or text)", run: d.upload})

	return d
}

func (d *Dispatcher) register(name string, c command) {
	if d.commands == nil {
		d.commands = make(map[string]command)
	}
	d.commands[name] = c
	d.order = append(d.order, name)
}

// HandleCommand runs a command such as "schedule" with its arguments.
// Unknown commands get a pointer to /help.
func (d *Dispatcher) HandleCommand(ctx context.Context, u User, name string, args []string) services.Response {
	name = strings.ToLower(strings.TrimPrefix(name, "/"))

	c, ok := d.commands[name]
	if !ok {
		return services.Response{Text: "Unknown command. Use /help to see what I can do."}
	}

	if len(args) < c.minArgs || (c.maxArgs >= 0 && len(args) > c.maxArgs) {
		return d.translate(ctx, &domain.UsageError{Usage: "Usage: " + c.usage})
	}

	res, err := c.run(ctx, u, args)
	if err != nil {
		return d.translate(ctx, err)
	}
	return res
}

// HandleAction executes a button payload produced by the presentation layer.
func (d *Dispatcher) HandleAction(ctx context.Context, u User, payload string) services.Response {
	a, err := action.Decode(payload)
	if err != nil {
		log.Printf("req_id=%s decode action failed: %v", obs.RequestID(ctx), err)
		return services.Response{Text: "This button is no longer valid."}
	}

	switch a.Kind {
	case action.KindRoute:
		return d.Presenter.RenderRouteDetail(a.RouteID)
	case action.KindNavigate:
		res, err := d.Presenter.RenderNavigation(a.RouteID, a.From, a.To)
		if err != nil {
			return d.translate(ctx, err)
		}
		return res
	}

	return services.Response{Text: "This button is no longer valid."}
}

// HandleDocument ingests an uploaded schedule for a registered driver.
func (d *Dispatcher) HandleDocument(ctx context.Context, u User, doc ingest.Document) services.Response {
	if _, err := d.Drivers.GetDriver(ctx, u.ID); err != nil {
		return d.translate(ctx, err)
	}
	if d.MaxUploadBytes > 0 && len(doc.Data) > d.MaxUploadBytes {
		return d.translate(ctx, &domain.UsageError{
			Usage: fmt.Sprintf("File too large (max %d MB).", d.MaxUploadBytes>>20),
		})
	}

	res, err := d.Ingest.IngestDocument(ctx, u.ID, doc)
	if err != nil {
		var ie *domain.IngestionError
		if errors.As(err, &ie) && ie.Row == 0 {
			return services.Response{Text: "Could not read file: " + ie.Reason + "."}
		}
		return d.translate(ctx, err)
	}

	return renderIngestResult(res)
}

const maxListedRowErrors = 5

func renderIngestResult(res ingest.Result) services.Response {
	var b strings.Builder

	switch res.Status() {
	case ingest.Succeeded:
		fmt.Fprintf(&b, "Schedule updated: %d shift(s) saved.", res.Stored)
	case ingest.Partial:
		fmt.Fprintf(&b, "Schedule partially updated: %d of %d rows saved.", res.Stored, res.Total)
	default:
		b.WriteString("Could not read file: no valid schedule rows found.")
	}

	for i, e := range res.Errors {
		if i == maxListedRowErrors {
			fmt.Fprintf(&b, "\n... and %d more", len(res.Errors)-i)
			break
		}
		fmt.Fprintf(&b, "\nRow %d: %s", e.Row, e.Reason)
	}

	return services.Response{Text: b.String()}
}

// translate maps internal failures onto the user-facing error taxonomy.
// Only unexpected and external failures are logged.
func (d *Dispatcher) translate(ctx context.Context, err error) services.Response {
	var (
		ue  *domain.UsageError
		nf  *domain.NotFoundError
		ie  *domain.IngestionError
		ext *domain.ExternalServiceError
	)

	switch {
	case errors.As(err, &ue):
		return services.Response{Text: ue.Usage}
	case errors.As(err, &nf):
		switch nf.Kind {
		case "driver":
			return services.Response{Text: "Please register first with /register."}
		case "station":
			return services.Response{Text: fmt.Sprintf("Station not found: %s.", nf.Key)}
		default:
			return services.Response{Text: fmt.Sprintf("%s %s not found.", capitalize(nf.Kind), nf.Key)}
		}
	case errors.As(err, &ie):
		return services.Response{Text: "Could not read file: " + ie.Reason + "."}
	case errors.As(err, &ext):
		log.Printf("req_id=%s external service failure: service=%s err=%v", obs.RequestID(ctx), ext.Service, ext.Err)
		return services.Response{Text: "Sorry, the service is temporarily unavailable. Please try again later."}
	default:
		log.Printf("req_id=%s request failed: %v", obs.RequestID(ctx), err)
		return services.Response{Text: "Sorry, something went wrong. Please try again later."}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
