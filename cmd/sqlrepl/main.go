// Command sqlrepl runs SQL scripts through the lexer, parser, and catalog
// interpreter, standing in for the desktop UI shell this engine was
// originally embedded in.
package main

import "log"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
