package dispatch

import (
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/services"
	"context"
	"fmt"
	"strings"
)

func (d *Dispatcher) start(ctx context.Context, u User, args []string) (services.Response, error) {
	return services.Response{Text: fmt.Sprintf(
		"Hello %s! I am your bus navigation bot for Heidelberg.\nUse /register to sign up or /help for help.",
		u.Name,
	)}, nil
}

func (d *Dispatcher) helpCmd(ctx context.Context, u User, args []string) (services.Response, error) {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range d.order {
		c := d.commands[name]
		fmt.Fprintf(&b, "%s - %s\n", c.usage, c.help)
	}
	return services.Response{Text: b.String()}, nil
}

func (d *Dispatcher) registerDriver(ctx context.Context, u User, args []string) (services.Response, error) {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		name = fmt.Sprintf("driver %d", u.ID)
	}

	if err := d.Drivers.RegisterDriver(ctx, domain.Driver{ID: u.ID, Name: name}); err != nil {
		return services.Response{}, fmt.Errorf("register: %w", err)
	}
	return services.Response{Text: "Registration successful!"}, nil
}

func (d *Dispatcher) schedule(ctx context.Context, u User, args []string) (services.Response, error) {
	if _, err := d.Drivers.GetDriver(ctx, u.ID); err != nil {
		return services.Response{}, err
	}

	date := domain.DateOf(d.Now(), d.Location)
	if len(args) == 1 {
		parsed, err := domain.ParseDate(args[0])
		if err != nil {
			return services.Response{}, &domain.UsageError{Usage: "Invalid date format. Use YYYY-MM-DD."}
		}
		date = parsed
	}

	return d.Presenter.RenderSchedule(ctx, u.ID, date)
}

func (d *Dispatcher) routes(ctx context.Context, u User, args []string) (services.Response, error) {
	return d.Presenter.RenderAllRoutes(), nil
}

func (d *Dispatcher) route(ctx context.Context, u User, args []string) (services.Response, error) {
	return d.Presenter.RenderRouteDetail(args[0]), nil
}

func (d *Dispatcher) navigate(ctx context.Context, u User, args []string) (services.Response, error) {
	from, to, ok := splitStations(args[1:])
	if !ok {
		return services.Response{}, &domain.UsageError{
			Usage: "Usage: /navigate <route> <from> <to>\nFor names with spaces: /navigate 31 Alte Brücke -> Bismarckplatz",
		}
	}
	return d.Presenter.RenderNavigationByName(args[0], from, to)
}

// splitStations reads "<from> <to>" or, for multi-word names, "<from...> -> <to...>".
func splitStations(args []string) (from, to string, ok bool) {
	joined := strings.Join(args, " ")
	for _, sep := range []string{"->", "→"} {
		if i := strings.Index(joined, sep); i >= 0 {
			from = strings.TrimSpace(joined[:i])
			to = strings.TrimSpace(joined[i+len(sep):])
			return from, to, from != "" && to != ""
		}
	}

	if len(args) != 2 {
		return "", "", false
	}
	return args[0], args[1], true
}

func (d *Dispatcher) upload(ctx context.Context, u User, args []string) (services.Response, error) {
	return services.Response{Text: "Send your schedule as a document:\n" +
		"- a photo or PDF of the printed schedule\n" +
		"- a CSV or Excel (.xlsx) file with columns date,umlauf,start_time,end_time,routes\n" +
		"- a text file with lines like:\n" +
		"  Date: 2025-04-17\n" +
		"  Umlauf: U1 Time: 08:00-12:00 Routes: 31,32"}, nil
}
