// Command skycat queries zone-partitioned star catalogs from the command line
// and over HTTP.
package main

func main() {
	Execute()
}
