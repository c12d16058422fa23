package handler

import (
	"fmt"
	"strings"
)

const callbackSep = "|"

// EncodeCallback encodes a game, verb and parameter into callback data,
// e.g. "mafia|vote|3".
func EncodeCallback(game, verb, param string) string {
	return game + callbackSep + verb + callbackSep + param
}

// DecodeCallback splits callback data produced by EncodeCallback.
func DecodeCallback(data string) (game, verb, param string, ok bool) {
	parts := strings.SplitN(data, callbackSep, 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// seatButtons lays out one button per seat, three to a row.
func seatButtons(game, verb string, seats []int, names []string) [][]Button {
	var rows [][]Button
	var row []Button
	for i, seat := range seats {
		row = append(row, Button{
			Text: fmt.Sprintf("%d. %s", seat, names[i]),
			Data: EncodeCallback(game, verb, fmt.Sprint(seat)),
		})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}
