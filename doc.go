/*
Package tablebot is a table-driven conversational bot engine. A bot's whole
dialogue lives in one CSV table: each row maps a (state, trigger) pair to a
guard, a list of effects, the content to send and the next state. Analysts
edit the table; the engine supplies matching, guards, effects, templating
and session persistence.

# Concept

Dispatch walks the table top to bottom and fires the first row whose state,
trigger and role match the inbound event. Row order is the authoring
contract: specific rows go above wildcard rows. A fired row may be skipped
by its guard, runs its effects against the session payload, renders its
content with {field} placeholders and commits the transition.

The engine is platform-agnostic. Transports, session stores, geocoding and
metrics plug in through small interfaces in pkg/ports; the Telegram
adapter, Redis/SQLite stores and a Nominatim client ship in pkg/adapters
and pkg/geocode.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/leonidyasin/tablebot"
		"github.com/leonidyasin/tablebot/pkg/adapters/memory"
		"github.com/leonidyasin/tablebot/pkg/adapters/telegram"
		"github.com/leonidyasin/tablebot/pkg/table"
	)

	func main() {
		source, err := table.New("table.csv")
		if err != nil {
			log.Fatal(err)
		}
		transport, err := telegram.New("BOT_TOKEN")
		if err != nil {
			log.Fatal(err)
		}

		bot := tablebot.New(source, memory.NewStore(), transport,
			tablebot.WithCommandRegistry(transport))

		ctx := context.Background()
		if err := bot.RegisterMenu(ctx); err != nil {
			log.Fatal(err)
		}
		log.Fatal(transport.Listen(ctx, bot.HandleEvent))
	}
*/
package tablebot
