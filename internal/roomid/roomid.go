// Package roomid generates memorable room names such as
// "quiet-physics-lantern-otter".
package roomid

import (
	"crypto/rand"
	"math/big"
	"strings"
)

var adjectives = []string{
	"quiet", "bright", "curious", "steady", "clever", "patient", "focused", "gentle", "eager", "calm",
	"brave", "nimble", "sunny", "cozy", "lucky", "sharp", "humble", "witty", "bold", "keen",
}

var subjects = []string{
	"algebra", "biology", "chemistry", "physics", "history", "poetry", "geometry", "calculus", "ecology", "grammar",
	"logic", "music", "botany", "geology", "optics", "statistics", "economics", "astronomy", "anatomy", "robotics",
}

var objects = []string{
	"notebook", "pencil", "lantern", "compass", "atlas", "library", "chalk", "globe", "ruler", "easel",
	"telescope", "journal", "bookmark", "magnet", "prism", "abacus", "quill", "satchel", "beaker", "map",
}

var animals = []string{
	"otter", "owl", "panda", "koala", "fox", "hedgehog", "beaver", "dolphin", "penguin", "robin",
	"toucan", "parrot", "heron", "lynx", "badger", "falcon", "gecko", "walrus", "bison", "marmot",
}

var lists = [][]string{adjectives, subjects, objects, animals}

// New returns a fresh room name for which taken reports false. A nil taken
// accepts the first name.
func New(taken func(string) bool) string {
	for {
		words := make([]string, len(lists))
		for i, list := range lists {
			words[i] = list[randomIndex(len(list))]
		}
		id := strings.Join(words, "-")
		if taken == nil || !taken(id) {
			return id
		}
	}
}

// randomIndex returns a uniformly random index below n.
func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("roomid: crypto/rand failed: " + err.Error())
	}
	return int(v.Int64())
}
