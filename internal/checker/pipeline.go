package checker

import (
	"github.com/kenneth/autocrack/internal/arbitration"
	"github.com/kenneth/autocrack/internal/timer"
	"github.com/ryanuber/go-glob"
	"github.com/sirupsen/logrus"
)

// Pipeline is the composite checker ("Athena"): it runs the
// non-arbitration layers in order, stopping at the first positive, then
// optionally routes the winner through human arbitration.
type Pipeline struct {
	structural *Structural
	crib       *Crib
	identify   *Identify
	wordlist   *Wordlist
	model      *LanguageModelChecker

	checkersToRun  []string
	humanCheckerOn bool
	collectAll     bool

	timer  *timer.Timer
	logger *logrus.Logger

	lastAll []Result
}

// Config bundles the pipeline's wiring; every field is optional, and a
// nil Structural is replaced with the default by New.
type Config struct {
	Structural     *Structural
	Crib           *Crib
	Identify       *Identify
	Wordlist       *Wordlist
	Model          *LanguageModelChecker
	CheckersToRun  []string
	HumanCheckerOn bool
	// CollectAll makes the pipeline behave as "WaitAthena": the identify,
	// wordlist and model layers all run even after one of them is
	// positive, and All reports each verdict. A structural negative or an
	// active crib still ends the run early.
	CollectAll bool
	Timer      *timer.Timer
	Logger     *logrus.Logger
}

// New builds a Pipeline. A nil Structural is replaced with the default.
func New(cfg Config) *Pipeline {
	structural := cfg.Structural
	if structural == nil {
		structural = NewStructural()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pipeline{
		structural:     structural,
		crib:           cfg.Crib,
		identify:       cfg.Identify,
		wordlist:       cfg.Wordlist,
		model:          cfg.Model,
		checkersToRun:  cfg.CheckersToRun,
		humanCheckerOn: cfg.HumanCheckerOn,
		collectAll:     cfg.CollectAll,
		timer:          cfg.Timer,
		logger:         logger,
	}
}

func (p *Pipeline) enabled(name string) bool {
	if len(p.checkersToRun) == 0 {
		return true
	}
	for _, pattern := range p.checkersToRun {
		if glob.Glob(pattern, name) {
			return true
		}
	}
	return false
}

// Check runs the layered pipeline over text at the given sensitivity and
// returns the pipeline's verdict. When CollectAll is set, All returns
// every layer's result after a call to Check; the returned Result is the
// best positive found (or the structural layer's negative, if none).
func (p *Pipeline) Check(text string, sensitivity Sensitivity) Result {
	results, winner := p.run(text, sensitivity)
	p.lastAll = results
	if winner != nil {
		return p.arbitrate(*winner)
	}
	// An active crib's miss is authoritative and must not fall back to the
	// structural layer's near-universal positive verdict.
	if last := results[len(results)-1]; last.CheckerName == "crib" {
		return last
	}
	// No positive layer; return the structural layer's own verdict (which
	// may itself be negative for triviality reasons).
	for _, r := range results {
		if r.CheckerName == "structural" {
			return r
		}
	}
	return Result{Text: text, CheckerName: "structural", Description: "no layer evaluated the text"}
}

func (p *Pipeline) run(text string, sensitivity Sensitivity) ([]Result, *Result) {
	var results []Result

	structResult := p.structural.Check(text, sensitivity)
	results = append(results, structResult)
	if !structResult.IsIdentified {
		return results, nil
	}

	if p.crib != nil && p.crib.Active() {
		cribResult := p.crib.Check(text, sensitivity)
		results = append(results, cribResult)
		if cribResult.IsIdentified {
			return results, &cribResult
		}
		// An active crib pattern is authoritative: a negative verdict
		// short-circuits every other layer.
		return results, nil
	}

	var winner *Result
	tryLayer := func(name string, check func() Result) {
		if winner != nil && !p.collectAll {
			return
		}
		if !p.enabled(name) {
			return
		}
		r := check()
		results = append(results, r)
		if r.IsIdentified && winner == nil {
			winner = &r
		}
	}

	if p.identify != nil {
		tryLayer(p.identify.Name(), func() Result { return p.identify.Check(text, sensitivity) })
	}
	if p.wordlist != nil {
		tryLayer(p.wordlist.Name(), func() Result { return p.wordlist.Check(text, sensitivity) })
	}
	if p.model != nil {
		tryLayer(p.model.Name(), func() Result { return p.model.Check(text, sensitivity) })
	}

	return results, winner
}

func (p *Pipeline) arbitrate(winner Result) Result {
	if !p.humanCheckerOn {
		return winner
	}
	accept, err := arbitration.RequestConfirmation(winner.Text, winner.CheckerName, winner.Description, p.timer, p.humanCheckerOn)
	if err != nil {
		p.logger.WithError(err).Debug("checker: arbitration bridge detached, falling through")
	}
	if !accept {
		winner.IsIdentified = false
		winner.Description = "rejected by human arbitration"
	}
	return winner
}

// All returns every layer's Result from the most recent Check call, for
// WaitAthena-style top_results collection.
func (p *Pipeline) All() []Result {
	return p.lastAll
}
