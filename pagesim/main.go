// Command pagesim replays memory traces against page replacement policies.
package main

import "github.com/sarchlab/pagesim/pagesim/cmd"

func main() {
	cmd.Execute()
}
