// Package main is the ezodus CLI.
//
// Usage:
//
//	ezodus serve
//	ezodus analyze https://www.youtube.com/@brand
//	ezodus post --topic "Summer sale" --voice "Playful and warm" --out ./images
package main

func main() {
	Execute()
}
