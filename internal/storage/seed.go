package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/rulebot/internal/models"
)

// Seed populates the database with a sample coffee-shop bot and a set of
// realistic Q&A pairs covering the keyword-spec features (plain phrases,
// priorities, varied specificity). It is idempotent: if the sample bot
// already exists it is left untouched and its id is returned.
func Seed(ctx context.Context, store Storage) (int64, error) {
	botID, err := store.CreateBot(ctx, &models.Bot{
		Slug:            "cozy-cafe",
		Name:            "Cozy Café Helper",
		Theme:           "warm",
		Visibility:      "public",
		FallbackMessage: "Sorry, I'm not sure about that. You can call us at (555) 123-BREW or email hello@cozycafe.com!",
	})
	if errors.Is(err, ErrExists) {
		bot, getErr := store.GetBotBySlug(ctx, "cozy-cafe")
		if getErr != nil {
			return 0, getErr
		}
		return bot.ID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("seed bot: %w", err)
	}

	pairs := []models.QnA{
		// High priority: most common questions.
		{
			Question: "What are your hours?",
			Answer:   "We're open Monday-Friday 7am-8pm, Saturday-Sunday 8am-6pm. We're closed on major holidays.",
			Keywords: "hours,open,closed,time,schedule",
			Priority: 10,
		},
		{
			Question: "Where are you located?",
			Answer:   "We're located at 123 Main Street, downtown next to the bookstore. There's street parking available!",
			Keywords: "location,address,where,directions,parking",
			Priority: 10,
		},
		{
			Question: "Do you have WiFi?",
			Answer:   "Yes! We have free WiFi. The password is 'CozyCoffee2024'. Perfect for remote work!",
			Keywords: "wifi,internet,password,work,laptop",
			Priority: 9,
		},
		// Medium priority: menu.
		{
			Question: "What coffee do you serve?",
			Answer:   "We serve locally roasted single-origin coffee, espresso drinks, cold brew, and seasonal specials. We also have decaf and oat milk options!",
			Keywords: "coffee,espresso,latte,cappuccino,menu,drinks",
			Priority: 8,
		},
		{
			Question: "Do you have food?",
			Answer:   "Yes! We have fresh pastries, sandwiches, salads, and daily soup. Everything is made fresh daily by our kitchen team.",
			Keywords: "food,eat,pastries,sandwich,salad,soup,hungry",
			Priority: 7,
		},
		{
			Question: "Do you have vegan options?",
			Answer:   "Absolutely! We have oat milk, almond milk, vegan pastries, and several plant-based sandwich options.",
			Keywords: "vegan,plant,dairy,milk,oat,almond",
			Priority: 6,
		},
		{
			Question: "What's your phone number?",
			Answer:   "You can reach us at (555) 123-BREW. We answer during business hours!",
			Keywords: "phone,call,contact,number",
			Priority: 6,
		},
		// Lower priority: specific services.
		{
			Question: "Can I reserve a table?",
			Answer:   "We don't take reservations, but you can call ahead if you're bringing a large group (6+ people) and we'll do our best to accommodate!",
			Keywords: "reserve,reservation,table,group,book",
			Priority: 5,
		},
		{
			Question: "Do you host events?",
			Answer:   "We host small events like book clubs, acoustic music nights, and art shows. Contact us at events@cozycafe.com for details!",
			Keywords: "events,party,music,art,book,host",
			Priority: 4,
		},
		{
			Question: "Do you sell gift cards?",
			Answer:   "Yes! Gift cards are available in $10, $25, and $50 amounts. Perfect for the coffee lover in your life!",
			Keywords: "gift,card,present,buy,money",
			Priority: 4,
		},
		{
			Question: "Are you hiring?",
			Answer:   "We're always looking for great baristas! Drop off your resume or email it to jobs@cozycafe.com. Experience preferred but we'll train the right person.",
			Keywords: "hiring,job,work,barista,resume,employment",
			Priority: 3,
		},
	}

	for i := range pairs {
		pairs[i].BotID = botID
		if _, err := store.CreateQnA(ctx, &pairs[i]); err != nil {
			return 0, fmt.Errorf("seed qna %q: %w", pairs[i].Question, err)
		}
	}
	return botID, nil
}
