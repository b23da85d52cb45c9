// Command blocknum converts documents between HTML, Markdown, JSON and
// Notion blocks, numbering their list items.
package main

func main() {
	Execute()
}
