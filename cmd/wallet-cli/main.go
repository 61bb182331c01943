package main

import "tangle-wallet/cmd/wallet-cli/cmd"

func main() {
	cmd.Execute()
}
