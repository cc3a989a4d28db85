// Package protocol defines the JSON frames exchanged over /ws.
//
// Client -> Server (every frame carries "type" and "roomId"):
//
//	join:                 playerName, playerCount (capacity, only used by the creator)
//	set-ready:            {}                       (alias: setup-done)
//	end-turn:             {}                       (alias: knock)
//	place-card:           card, position {x,y}     (alias: move-card)
//	update-card:          cardId | cardIndex, rotation?, tokens?
//	update-card-position: cardId | cardIndex, position
//	remove-card:          cardId | cardIndex
//	hand-count-update:    handCounts (opaque)      (alias: hand-update)
//	leave:                {}
//	set-deck:             deck (opaque, not stored)
//	roll-dice:            sides
//	close-dice:           {}
//	play-nwo:             color, card
//	remove-nwo:           color
//	show-card:            card                     (alias: show-card-to-all)
//
// Server -> Client frames are {"type": ..., "data": {...}}; see the Evt constants.
package protocol
