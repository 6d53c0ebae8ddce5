// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package split_test

import (
	"fmt"
	"log"

	"github.com/miataru/qr/coding"
	"github.com/miataru/qr/split"
)

func ExampleNew() {
	s := split.String{Text: "HELLO 2024年の点"}
	for _, p := range []split.Policy{split.Single, split.Optimal} {
		sp, err := split.New(s, p)
		if err != nil {
			log.Fatalln(err)
		}
		segs, err := sp.Split(coding.Class0)
		if err != nil {
			log.Fatalln(err)
		}
		n, _ := split.Length(segs, coding.Class0)
		fmt.Printf("%s: %d bits %v\n", p, n, segs)
	}
	// Output:
	// single: 164 bits [byte(19 chars, 152 bits)]
	// optimal: 119 bits [alphanumeric(10 chars, 55 bits) kanji(3 chars, 39 bits)]
}
