package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"sushigo/internal/app"
	"sushigo/internal/bot"
	"sushigo/internal/config"
	"sushigo/internal/domain"
	"sushigo/internal/logging"

	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

// StartSimulation plays one bot-only game in-process and prints the scores.
func StartSimulation(args []string) {
	fs := flag.NewFlagSet("simulation", flag.ExitOnError)
	players := fs.Int("players", 4, "number of bots (2-5)")
	level := fs.String("level", "greedy", "bot level: first, random or greedy")
	seed := fs.Int64("seed", time.Now().UnixNano(), "deck seed")
	_ = fs.Parse(args)

	pterm.DefaultHeader.WithFullWidth().Printfln("Sushi Go simulation: %d %s bots, seed %d", *players, *level, *seed)
	if _, err := runSimulation(*players, *level, *seed, render); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// runSimulation plays a full game between bots. Every random choice, the
// deck and random-level bots alike, derives from seed. observe, if set, sees
// each batch of events as it is produced.
func runSimulation(players int, levelName string, seed int64, observe func(*domain.Session, []app.Event)) (app.GameEndPayload, error) {
	level, err := bot.ParseLevel(levelName)
	if err != nil {
		return app.GameEndPayload{}, err
	}
	if observe == nil {
		observe = func(*domain.Session, []app.Event) {}
	}

	cfg := config.Defaults()
	cfg.RevealPauseMs = 0
	cfg.RoundEndPauseMs = 0
	svc := app.NewService(rand.New(rand.NewSource(seed)), cfg, logging.Wrap(zap.NewNop()))
	session := svc.NewSession("SIM000")

	agents := make([]*bot.Agent, 0, players)
	for i := 1; i <= players; i++ {
		id := "bot-" + strconv.Itoa(i)
		agent, err := bot.NewAgent(id, fmt.Sprintf("Bot %d", i), level, rand.New(rand.NewSource(seed+int64(i))))
		if err != nil {
			return app.GameEndPayload{}, err
		}
		if _, err := svc.Join(session, id, agent.Name); err != nil {
			return app.GameEndPayload{}, err
		}
		agents = append(agents, agent)
	}

	if _, err := svc.Start(session, session.HostID); err != nil {
		return app.GameEndPayload{}, err
	}

	var result app.GameEndPayload
	for session.Phase != domain.PhaseGameEnd {
		switch session.Phase {
		case domain.PhaseSelecting:
			for _, a := range agents {
				move, err := a.Play(session)
				if err != nil {
					return result, err
				}
				events, err := svc.Select(session, a.ID, move.Selection())
				if err != nil {
					return result, fmt.Errorf("%s: %w", a.Name, err)
				}
				collect(&result, events)
				observe(session, events)
			}
		case domain.PhaseRoundEnd:
			_, events, err := svc.Advance(session, session.HostID)
			if err != nil {
				return result, err
			}
			collect(&result, events)
			observe(session, events)
		default:
			return result, fmt.Errorf("simulation stuck in phase %s", session.Phase)
		}
	}
	return result, nil
}

func collect(result *app.GameEndPayload, events []app.Event) {
	for _, ev := range events {
		if p, ok := ev.Payload.(app.GameEndPayload); ok {
			*result = p
		}
	}
}

// render prints round and game results found in events.
func render(session *domain.Session, events []app.Event) {
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case app.RoundEndPayload:
			renderRound(session, p)
		case app.GameEndPayload:
			renderGameEnd(p)
		}
	}
}

func renderRound(session *domain.Session, p app.RoundEndPayload) {
	pterm.DefaultSection.Printfln("Round %d", p.Round)
	data := pterm.TableData{{"Player", "Maki", "Tempura", "Sashimi", "Dumpling", "Sushi", "Round", "Total"}}

	ps := session.Participants()
	sort.SliceStable(ps, func(i, j int) bool { return p.Scores[ps[i].ID].Total > p.Scores[ps[j].ID].Total })
	for _, part := range ps {
		b := p.Scores[part.ID]
		data = append(data, []string{
			part.Name,
			strconv.Itoa(b.Maki),
			strconv.Itoa(b.Tempura),
			strconv.Itoa(b.Sashimi),
			strconv.Itoa(b.Dumpling),
			strconv.Itoa(b.Sushi),
			strconv.Itoa(b.Total),
			strconv.Itoa(part.Score),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderGameEnd(p app.GameEndPayload) {
	pterm.DefaultSection.Println("Final standings")
	data := pterm.TableData{{"Rank", "Player", "Puddings", "Pudding pts", "Score"}}
	for _, r := range p.Rankings {
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			r.Name,
			strconv.Itoa(r.Puddings),
			strconv.Itoa(p.PuddingScores[r.ParticipantID]),
			strconv.Itoa(r.Score),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Success.Printfln("Winner: %s", pterm.LightCyan(p.Winner))
}
