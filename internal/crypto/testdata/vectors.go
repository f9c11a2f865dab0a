package testdata

// KeyVector is a known PBKDF2-HMAC-SHA256 (10,000 iterations) result.
type KeyVector struct {
	Name     string
	Password string
	Salt     string // Base64
	Key      string // Hex
}

// KeyVectors contains key derivation vectors.
var KeyVectors = []KeyVector{
	{
		Name:     "password with salt literal",
		Password: "password",
		Salt:     "salt", // base64, decodes to 0xb1 0xa9 0x6d
		Key:      "a6e9a98f39015cba2058d4f420fbf2b2e0eae673a7d460b21de19eeff94cf6db",
	},
}

// VaultVector is a vault written by the browser extension.
type VaultVector struct {
	Name      string
	Password  string
	Data      string
	IV        string
	Salt      string
	Mnemonic  string
	Plaintext string
}

// Chromium108 was captured from Chromium 108 running extension 10.24.2.
// Its IV is 16 bytes long.
var Chromium108 = VaultVector{
	Name:     "chromium-108.0_5359.98_4.10.24.2",
	Password: "JooXegoodowu8mohf2ietah5kohgah5",
	Data:     "8w0Wn8LaR3kMTp++Crr/JMCd6/xrfI1xWJsBgZXIdaKvPHCpjK/o1d6drEvQ7/ThtCynS5jP5F2T5esc0cin6E+2g3zcHRIpYp1Ut3Zn4Gw5Of8yxEk+Whq5eV2O8kbxfeurqTBx3b377e9Jd4N39QFF9kyE3cr8j6fETQvKjOC6irIGL0vI+TkUUylKISZ2OksbQJEooWPW3S1O8xdazL32j7dOnLbkrq1Xan0EIC7sg41oWUyMuS5eVopigxJ0ehueZsFlkvcBb+9zp6eMW5rw+CHC8KHXZdWGU45Ag85PaO5smtkOzb+WrQbufpQgsgKY23SsM8I1uTK6738/IHQ7kzFYImX0AJdF60xiUpihA/iUdWn6lr+kS4uyp7NhMLb4D5fHQi7pDb29TIDj1267rCD3w1N9M1nwWUjcG0gw5AMdf4bwYjpKOeQv2M5dGiX41+iQ9Rs5R6t3qZTNZpNu/czZaCUU8Bbr/je6Z7Milwl3b5NMfO7u2GID7aSG8s8RQ6/D5PjmtJN3a5BY6WLm1IzV",
	IV:       "SCr2xR/hqI6qqJQese4E9Q==",
	Salt:     "HQnH0ArgfCWp86acfYN5Kr9wCWFKE3uw0fwUQafJHMY=",
	Mnemonic: "harvest afraid useful nose electric swift various man boil diagram confirm ahead",
	Plaintext: `[{"type":"HD Key Tree","data":{"mnemonic":[104,97,114,118,101,115,116,32,97,102,114,97,105,100,32,117,115,101,102,117,108,32,110,111,115,101,32,101,108,101,99,116,114,105,99,32,115,119,105,102,116,32,118,97,114,105,111,117,115,32,109,97,110,32,98,111,105,108,32,100,105,97,103,114,97,109,32,99,111,110,102,105,114,109,32,97,104,101,97,100],"numberOfAccounts":1,"hdPath":"m/44'/60'/0'/0"}}]`,
}
