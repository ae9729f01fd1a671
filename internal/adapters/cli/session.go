package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/httpapi"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	playgroundQueries "github.com/andrescamacho/warera-economy-go/internal/application/playground/queries"
	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

// sessionFlags selects a facility set and the edits applied to it before computing
type sessionFlags struct {
	facilitiesPath string
	fromUser       string
	savePath       string

	addWorker    []string
	removeWorker []string
	wage         []string
	automation   []string
	storage      []string
	bonus        []string
	output       []string
}

func (s *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.facilitiesPath, "facilities", "f", "", "Facility JSON file ('-' for stdin)")
	cmd.Flags().StringVar(&s.fromUser, "from-user", "", "Load a player's companies live instead of a file")
	cmd.Flags().StringVar(&s.savePath, "save", "", "Write the edited facilities to this JSON file")

	cmd.Flags().StringArrayVar(&s.addWorker, "add-worker", nil, "Add a default worker: FACILITY")
	cmd.Flags().StringArrayVar(&s.removeWorker, "remove-worker", nil, "Remove a worker: FACILITY:WORKER")
	cmd.Flags().StringArrayVar(&s.wage, "wage", nil, "Change a wage: FACILITY:WORKER=WAGE")
	cmd.Flags().StringArrayVar(&s.automation, "automation", nil, "Change automation level: FACILITY=+N|-N")
	cmd.Flags().StringArrayVar(&s.storage, "storage", nil, "Change storage level: FACILITY=+N|-N")
	cmd.Flags().StringArrayVar(&s.bonus, "bonus", nil, "Set production bonus percent: FACILITY=PCT")
	cmd.Flags().StringArrayVar(&s.output, "output", nil, "Switch output item: FACILITY=ITEM")
}

// session is a loaded and edited facility set
type session struct {
	Facilities []production.FacilityParams

	// Prices is set when the facilities came from a live account; nil uses the cache
	Prices *market.PriceTable
}

// load reads the facility set from a file or a live account and applies the edits
func (s *sessionFlags) load(ctx context.Context, m mediator.Mediator, defaults economy.Defaults, stdin io.Reader) (*session, error) {
	var out session

	switch {
	case s.fromUser != "":
		resp, err := mediator.Send[*playgroundQueries.LoadPlaygroundResponse](ctx, m, &playgroundQueries.LoadPlaygroundQuery{Username: s.fromUser})
		if err != nil {
			return nil, err
		}
		out.Facilities = resp.Facilities
		prices := resp.Prices
		out.Prices = &prices
	case s.facilitiesPath == "-":
		params, err := httpapi.DecodeFacilities(stdin)
		if err != nil {
			return nil, err
		}
		out.Facilities = params
	case s.facilitiesPath != "":
		f, err := os.Open(s.facilitiesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open facilities: %w", err)
		}
		defer f.Close()
		params, err := httpapi.DecodeFacilities(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.facilitiesPath, err)
		}
		out.Facilities = params
	default:
		return nil, fmt.Errorf("either --facilities or --from-user is required")
	}

	edited, err := s.edits().apply(out.Facilities, defaults)
	if err != nil {
		return nil, err
	}
	out.Facilities = edited

	if s.savePath != "" {
		if err := writeFile(s.savePath, func(w io.Writer) error {
			return httpapi.EncodeFacilities(w, edited)
		}); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func (s *sessionFlags) edits() sessionEdits {
	return sessionEdits{
		addWorker:    s.addWorker,
		removeWorker: s.removeWorker,
		wage:         s.wage,
		automation:   s.automation,
		storage:      s.storage,
		bonus:        s.bonus,
		output:       s.output,
	}
}

// sessionEdits are raw edit specs as given on the command line
type sessionEdits struct {
	addWorker    []string
	removeWorker []string
	wage         []string
	automation   []string
	storage      []string
	bonus        []string
	output       []string
}

// apply builds facilities from params, applies every edit and snapshots the result.
// Edits name facilities by id or, failing that, by position (1-based).
func (e sessionEdits) apply(params []production.FacilityParams, defaults economy.Defaults) ([]production.FacilityParams, error) {
	facilities := make([]*production.Facility, len(params))
	for i, p := range params {
		f, err := production.NewFacility(p, defaults)
		if err != nil {
			return nil, fmt.Errorf("facility %d: %w", i+1, err)
		}
		facilities[i] = f
	}

	find := func(ref string) (*production.Facility, error) {
		for _, f := range facilities {
			if f.ID() == ref {
				return f, nil
			}
		}
		if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(facilities) {
			return facilities[n-1], nil
		}
		return nil, shared.NewNotFoundError("facility", ref)
	}

	for _, ref := range e.addWorker {
		f, err := find(ref)
		if err != nil {
			return nil, err
		}
		f.AddWorker(production.NewDefaultWorker())
	}

	for _, spec := range e.removeWorker {
		facilityRef, workerID, ok := strings.Cut(spec, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --remove-worker %q, expected FACILITY:WORKER", spec)
		}
		f, err := find(facilityRef)
		if err != nil {
			return nil, err
		}
		if err := f.RemoveWorker(workerID); err != nil {
			return nil, err
		}
	}

	for _, spec := range e.wage {
		target, value, ok := strings.Cut(spec, "=")
		facilityRef, workerID, ok2 := strings.Cut(target, ":")
		if !ok || !ok2 {
			return nil, fmt.Errorf("invalid --wage %q, expected FACILITY:WORKER=WAGE", spec)
		}
		wage, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid wage in %q: %w", spec, err)
		}
		f, err := find(facilityRef)
		if err != nil {
			return nil, err
		}
		if err := f.SetWorkerWage(workerID, wage); err != nil {
			return nil, err
		}
	}

	levelEdits := []struct {
		flag   string
		specs  []string
		adjust func(*production.Facility, int) int
	}{
		{"automation", e.automation, (*production.Facility).AdjustAutomationLevel},
		{"storage", e.storage, (*production.Facility).AdjustStorageLevel},
	}
	for _, le := range levelEdits {
		for _, spec := range le.specs {
			facilityRef, value, ok := strings.Cut(spec, "=")
			if !ok {
				return nil, fmt.Errorf("invalid --%s %q, expected FACILITY=+N", le.flag, spec)
			}
			delta, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid level change in %q: %w", spec, err)
			}
			f, err := find(facilityRef)
			if err != nil {
				return nil, err
			}
			le.adjust(f, delta)
		}
	}

	for _, spec := range e.bonus {
		facilityRef, value, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --bonus %q, expected FACILITY=PCT", spec)
		}
		pct, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bonus in %q: %w", spec, err)
		}
		f, err := find(facilityRef)
		if err != nil {
			return nil, err
		}
		f.SetProductionBonus(shared.NewPercentage(pct))
	}

	for _, spec := range e.output {
		facilityRef, item, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --output %q, expected FACILITY=ITEM", spec)
		}
		f, err := find(facilityRef)
		if err != nil {
			return nil, err
		}
		if err := f.SetOutputItem(item); err != nil {
			return nil, err
		}
	}

	out := make([]production.FacilityParams, len(facilities))
	for i, f := range facilities {
		out[i] = f.Params()
	}
	return out, nil
}
