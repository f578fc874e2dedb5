package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"go.uber.org/zap"

	"github.com/tatianab/narrative-engine/internal/chat"
	"github.com/tatianab/narrative-engine/internal/config"
	"github.com/tatianab/narrative-engine/internal/engine"
	"github.com/tatianab/narrative-engine/internal/markers"
	"github.com/tatianab/narrative-engine/internal/models"
	"github.com/tatianab/narrative-engine/internal/storage"
)

const maxTurns = 10

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// The narrator and the player talk to the same provider.
	narrator, err := chat.New(ctx, cfg.Chat())
	if err != nil {
		log.Fatalf("Failed to create narrator client: %v", err)
	}
	player, err := chat.New(ctx, cfg.Chat())
	if err != nil {
		log.Fatalf("Failed to create player client: %v", err)
	}
	for _, c := range []chat.Client{narrator, player} {
		if closer, ok := c.(io.Closer); ok {
			defer closer.Close()
		}
	}

	game := engine.NewGame(engine.NewEngine(narrator, logger, nil), storage.NewMemoryStore())

	// 1. Get a world idea from the player
	fmt.Println("--- Step 1: Requesting a world idea from the player ---")
	idea, err := player.Complete(ctx, []chat.Message{{
		Role:    models.RoleUser,
		Content: "你是一名即将开始文字冒险游戏的玩家。请给出一句简短而有创意的世界设定（例如“漂浮在云海上的蒸汽城市”）。只返回这句话。",
	}})
	if err != nil {
		log.Fatalf("Failed to get world idea: %v", err)
	}
	idea = strings.TrimSpace(idea)
	fmt.Printf("Player chose: %s\n\n", idea)

	// 2. Generate the world
	fmt.Println("--- Step 2: Generating world ---")
	if err := game.NewWorld(ctx, idea); err != nil {
		log.Printf("World generation failed, using the built-in world: %v", err)
		if err := game.Init(nil); err != nil {
			log.Fatalf("Failed to start game: %v", err)
		}
	}
	world := game.World()
	fmt.Printf("Title: %s\n", world.Title)
	fmt.Printf("Description: %s\n\n", world.Description)

	// 3. Play
	action := "环顾四周"
	for turn := 1; turn <= maxTurns; turn++ {
		fmt.Printf("--- Turn %d ---\n", turn)
		fmt.Printf("Player action: %s\n", action)

		res, err := game.Send(ctx, action, nil)
		if err != nil {
			fmt.Printf("Error processing turn: %v\n", err)
			break
		}
		fmt.Printf("Narrator (%s):\n%s\n", res.Outcome, markers.Strip(res.Reply))
		if res.Outcome == engine.OutcomeFallback {
			fmt.Printf("Reason: %s\n", res.Reason)
		}
		for _, m := range res.Batch.Markers() {
			fmt.Printf("Effect: %s %+v\n", m.Kind(), m)
		}

		s := game.State()
		fmt.Printf("Stats: %v  Inventory: %d items  Unlocked: %v\n\n", s.PlayerStats, len(s.Inventory), s.Unlocked())
		if s.PendingMajorEvent != nil {
			fmt.Printf("MAJOR EVENT: %s\n\n", s.PendingMajorEvent.Title)
			game.DismissEvent()
		}

		action = getPlayerAction(ctx, player, s, world)
	}
}

// getPlayerAction asks the player model for its next move, preferring one of
// the offered options.
func getPlayerAction(ctx context.Context, player chat.Client, s *models.GameState, world *models.WorldConfig) string {
	var history strings.Builder
	for _, m := range s.Messages {
		if m.Role == models.RoleSystem {
			continue
		}
		fmt.Fprintf(&history, "[%s] %s\n", m.Role, markers.Strip(m.Content))
	}

	prompt := fmt.Sprintf(`你正在玩一款文字冒险游戏《%s》。
世界：%s
属性：%v

最近的经历：
%s
可选行动：%s

你的下一步行动是什么？可以从可选行动中挑一个，也可以自由发挥，但要符合世界逻辑。只返回行动本身。`,
		world.Title,
		world.Description,
		s.PlayerStats,
		history.String(),
		strings.Join(s.CurrentActions, " / "),
	)

	action, err := player.Complete(ctx, []chat.Message{{Role: models.RoleUser, Content: prompt}})
	if err != nil || strings.TrimSpace(action) == "" {
		if len(s.CurrentActions) > 0 {
			return s.CurrentActions[0]
		}
		return "继续前进"
	}
	return strings.TrimSpace(action)
}
