// Command arenactl creates, inspects and exercises persisted arena files.
package main

func main() {
	execute()
}
