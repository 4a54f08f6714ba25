// pkg/rope/testdata_test.go
package rope

// Shared fixtures: 127 bytes / 103 scalars / one line, and a four-line
// variant at 124 bytes / 100 scalars.
const (
	benchText = "Hello there!  How're you doing?  It's a fine day, " +
		"isn't it?  Aren't you glad we're alive?  こんにちは、みんなさん！"

	benchTextLines = "Hello there!  How're you doing?\nIt's a fine day, " +
		"isn't it?\nAren't you glad we're alive?\nこんにちは、みんなさん！"

	benchTextCRLF = "Hello there!\r\nHow're you doing?\r\nIt's a fine day,\r\nisn't it?"
)
