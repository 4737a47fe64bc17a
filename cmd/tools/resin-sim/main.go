package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/annel0/resinfarm/internal/app"
	"github.com/annel0/resinfarm/internal/config"
	"github.com/annel0/resinfarm/internal/vec"
	"github.com/annel0/resinfarm/internal/world"
	"github.com/annel0/resinfarm/internal/world/block"
	"github.com/annel0/resinfarm/internal/world/block/implementations"
	"github.com/annel0/resinfarm/internal/world/item"
)

func main() {
	var (
		command = flag.String("cmd", "roll", "Command: roll, session")
		seed    = flag.Int64("seed", 0, "World seed")
		chance  = flag.Float64("chance", 0.5, "Success chance for roll")
		size    = flag.Int("size", 32, "Grid side length")
		y       = flag.Int("y", 64, "Grid height")
		assets  = flag.String("assets", "assets", "Assets directory for session")
		role    = flag.String("role", "server", "Role for session: server, client")
	)
	flag.Parse()

	if *size <= 0 {
		log.Fatalf("❌ size must be > 0")
	}

	switch *command {
	case "roll":
		hits, total := rollGrid(*seed, *chance, *size, *y)
		printRatio(hits, total)

	case "session":
		stats, err := runSessions(&SessionOptions{
			Seed:      *seed,
			Size:      *size,
			Y:         *y,
			AssetsDir: *assets,
			Role:      *role,
		})
		if err != nil {
			log.Fatalf("❌ Session failed: %v", err)
		}
		fmt.Printf("🪵 Block type: %s\n", stats.Block)
		printRatio(stats.Success, stats.Total)
		fmt.Printf("🔁 Transformed: %d, feedback: %d, tools broken: %d\n",
			stats.Transformed, stats.Feedback, stats.ToolsBroken)

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: roll, session")
		os.Exit(1)
	}
}

func printRatio(hits, total int) {
	ratio := 0.0
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	fmt.Printf("🎲 Hits: %d / %d (%.3f)\n", hits, total, ratio)
}

// rollGrid считает удачные броски на квадрате size x size без мира
func rollGrid(seed int64, chance float64, size, y int) (hits, total int) {
	for x := 0; x < size; x++ {
		for z := 0; z < size; z++ {
			total++
			if implementations.ShouldSucceed(seed, vec.Vec3{X: x, Y: y, Z: z}, chance) {
				hits++
			}
		}
	}
	return hits, total
}

type SessionOptions struct {
	Seed      int64
	Size      int
	Y         int
	AssetsDir string
	Role      string
}

type SessionStats struct {
	Block       string
	Total       int
	Success     int
	Transformed int
	Feedback    int
	ToolsBroken int
}

// runSessions проводит полный цикл start/step/stop над каждым блоком сетки
func runSessions(opts *SessionOptions) (*SessionStats, error) {
	cfg := config.Default()
	cfg.World.Seed = opts.Seed
	cfg.World.Role = opts.Role
	cfg.World.AssetsDir = opts.AssetsDir
	cfg.World.GeneratorSize = 1

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	code, tool, duration, err := pickBarkCuttable(a)
	if err != nil {
		return nil, err
	}

	player := world.NewPlayer("resin-sim")
	a.World.AddPlayer(player)

	stats := &SessionStats{Block: code.String()}
	for x := 0; x < opts.Size; x++ {
		for z := 0; z < opts.Size; z++ {
			pos := vec.Vec3{X: x, Y: opts.Y, Z: z}
			if err := a.World.PlaceBlock(pos, code); err != nil {
				return nil, err
			}
			if player.ActiveSlot().Empty() {
				player.Give(0, item.NewStack(tool, 1))
			}

			_, handled, err := a.Dispatcher.Start(ctx, player, block.Selection{Position: pos, Face: block.FaceNorth})
			if err != nil {
				return nil, err
			}
			if !handled {
				return nil, fmt.Errorf("%s не принял инструмент %s", code, tool.Code)
			}
			if _, err := a.Dispatcher.Step(ctx, player.ID(), duration/2); err != nil {
				return nil, err
			}
			res, err := a.Dispatcher.Stop(ctx, player.ID(), duration)
			if err != nil {
				return nil, err
			}

			stats.Total++
			if res.Success {
				stats.Success++
			}
			if res.Transformed {
				stats.Transformed++
			}
			if res.FeedbackSent {
				stats.Feedback++
			}
			if res.ToolDamaged && player.ActiveSlot().Empty() {
				stats.ToolsBroken++
			}
		}
	}
	return stats, nil
}

// pickBarkCuttable находит первый тип блока с BarkCuttable и подходящий инструмент
func pickBarkCuttable(a *app.App) (block.Code, *item.Item, float64, error) {
	var (
		code     block.Code
		tool     *item.Item
		duration float64
	)
	a.World.Types().Each(func(bt *block.BlockType) {
		if tool != nil {
			return
		}
		for _, b := range bt.Behaviors {
			cutter, ok := b.(interface {
				Config() implementations.BarkConfig
				Tools() item.ToolSet
			})
			if !ok || cutter.Tools().Len() == 0 {
				continue
			}
			it, found := a.Items.Get(cutter.Tools().Codes()[0])
			if !found {
				continue
			}
			code, tool, duration = bt.Code, it, cutter.Config().Duration
			return
		}
	})
	if tool == nil {
		return block.Code{}, nil, 0, fmt.Errorf("в %s нет блоков с %s", a.Config.World.AssetsDir, implementations.BarkCuttableName)
	}
	return code, tool, duration, nil
}
