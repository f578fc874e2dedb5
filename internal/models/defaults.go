package models

// DefaultWorld returns a fresh copy of the built-in world.
func DefaultWorld() *WorldConfig {
	return &WorldConfig{
		Title: "冒险旅途",
		Genre: "奇幻冒险",
		Icon:  "🎮",
		Description: "一个宁静的边境小镇突然被异界裂缝笼罩。你，一个普通的旅行者，" +
			"被卷入了一场跨越维度的冒险。四位命运各异的同伴将与你并肩作战，" +
			"探索未知的世界，揭开裂缝背后的秘密。",
		NarrativeStyle: "叙事风格轻快明朗，战斗描写简练有力，角色对话个性鲜明。" +
			"用第二人称\"你\"拉近沉浸感，场景描写注重氛围渲染。",
		ThemeColors: ThemeColors{
			Primary:       "#6366f1",
			PrimaryLight:  "rgba(99,102,241,0.1)",
			Accent:        "#f59e0b",
			BgPrimary:     "#1a1a1a",
			BgSecondary:   "#0f0f0f",
			BgCard:        "#242424",
			TextPrimary:   "#f5f5f5",
			TextSecondary: "#a3a3a3",
		},
		MaxDays:         DefaultMaxDays,
		MaxActionPoints: DefaultMaxActionPoints,
		Periods: []TimePeriod{
			{Index: 0, Name: "清晨", Icon: "🌅", Hours: "06:00-08:00"},
			{Index: 1, Name: "上午", Icon: "☀️", Hours: "08:00-11:00"},
			{Index: 2, Name: "午后", Icon: "🌞", Hours: "11:00-14:00"},
			{Index: 3, Name: "下午", Icon: "⛅", Hours: "14:00-17:00"},
			{Index: 4, Name: "傍晚", Icon: "🌇", Hours: "17:00-19:00"},
			{Index: 5, Name: "夜晚", Icon: "🌙", Hours: "19:00-23:00"},
			{Index: 6, Name: "深夜", Icon: "🌃", Hours: "23:00-06:00"},
		},
		Characters: []Character{
			{
				ID: "lina", Name: "莉娜", Avatar: "🗡", Title: "边境剑士", ThemeColor: "#ef4444",
				Description:  "沉默寡言的边境守卫，剑法凌厉。失去了家园后独自流浪，对异界裂缝有切身之痛。",
				InitialStats: map[string]int{"信任": 30, "默契": 10},
			},
			{
				ID: "milo", Name: "米洛", Avatar: "📖", Title: "流浪学者", ThemeColor: "#6366f1",
				Description:  "博学多闻的旅行学者，总是随身带着一本厚重的笔记本。对裂缝现象有独到见解。",
				InitialStats: map[string]int{"信任": 25, "默契": 15},
			},
			{
				ID: "kael", Name: "凯尔", Avatar: "🛡", Title: "神秘骑士", ThemeColor: "#f59e0b",
				Description:  "身披黑色铠甲的骑士，来历不明。行事果断，似乎知道裂缝的某些秘密。",
				InitialStats: map[string]int{"信任": 15, "默契": 5},
				Locked:       true,
			},
			{
				ID: "yuki", Name: "雪织", Avatar: "✨", Title: "异界旅人", ThemeColor: "#22d3ee",
				Description:  "从裂缝另一端穿越而来的少女，拥有不属于这个世界的神秘力量。记忆残缺。",
				InitialStats: map[string]int{"信任": 10, "默契": 20},
				Locked:       true,
			},
		},
		Scenes: []Scene{
			{
				ID: "town-square", Name: "小镇广场", Icon: "🏘",
				Description: "边境小镇的中心广场，石板路两旁是低矮的木屋和商铺。裂缝出现后人烟渐稀。",
				Characters:  []string{"lina", "milo"},
			},
			{
				ID: "ancient-forest", Name: "古老森林", Icon: "🌲",
				Description: "小镇外围的茂密森林，树冠遮天蔽日。据说裂缝最先出现在森林深处。",
				Characters:  []string{"lina", "kael"},
			},
			{
				ID: "rift-edge", Name: "裂缝边缘", Icon: "🌀",
				Description: "异界裂缝的边缘地带，空气中弥漫着紫色的微光粒子，现实在这里变得模糊。",
				Characters:  []string{"milo", "yuki"},
			},
		},
		Goals: []Goal{
			{ID: "g1", Title: "揭开裂缝秘密", Condition: "收集散落在各处的符文碎片，拼凑出裂缝的成因，找到关闭裂缝的方法。"},
			{ID: "g2", Title: "集结同伴", Condition: "通过探索和对话解锁所有被锁定的角色，让他们加入你的冒险队伍。"},
			{ID: "g3", Title: "守护小镇", Condition: "在异界生物入侵前完成防御准备，保护边境小镇的居民安全。"},
		},
		PlayerStats: []StatConfig{
			{Name: "生命", Aliases: []string{"生命值", "HP", "体力"}, Color: "#ef4444", Icon: "❤️"},
			{Name: "智慧", Aliases: []string{"智慧值", "智力"}, Color: "#6366f1", Icon: "🧠"},
			{Name: "勇气", Aliases: []string{"勇气值", "胆量"}, Color: "#f59e0b", Icon: "🔥"},
		},
		InitialPlayerStats: map[string]int{"生命": 80, "智慧": 50, "勇气": 40},
		CharacterStats: []StatConfig{
			{Name: "信任", Aliases: []string{"信任度", "信任值"}, Color: "#22d3ee", Icon: "🤝"},
			{Name: "默契", Aliases: []string{"默契值", "默契度"}, Color: "#a78bfa", Icon: "💫"},
		},
		Items: []Item{
			{ID: "heal-potion", Name: "治愈药水", Icon: "🧪", Type: "药品", Description: "恢复少量生命力"},
			{ID: "old-map", Name: "残破地图", Icon: "🗺", Type: "线索", Description: "标注了裂缝出现位置的手绘地图"},
		},
	}
}
