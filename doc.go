// Package blockcrypt is a pedagogical symmetric-cryptography library built
// around a block-cipher composition engine.
//
// # Overview
//
// blockcrypt separates three concerns:
//
//   - Block ciphers implementing the BlockCipher interface: DES, Triple-DES,
//     DEAL, FROG, a parameterized Rijndael, and the RC4 stream cipher.
//   - Padding schemes: Zeros, ANSI X9.23, PKCS#7, and ISO 10126.
//   - The Context mode engine, which drives any BlockCipher under one of
//     seven confidentiality modes (ECB, CBC, PCBC, CFB, OFB, CTR,
//     RandomDelta) over in-memory buffers or streamed files.
//
// A small public-key subsystem (RSA with selectable primality testing, the
// Wiener low-exponent attack, and Diffie-Hellman key agreement) rounds out
// the library.
//
// # Basic Usage
//
//	cipher := blockcrypt.NewDES()
//	ctx, _ := blockcrypt.NewContext(cipher, key, blockcrypt.ModeCBC,
//	    blockcrypt.PaddingPKCS7, iv)
//	defer ctx.Close()
//
//	ciphertext, _ := ctx.Encrypt(plaintext)
//	plaintext2, _ := ctx.Decrypt(ciphertext)
//
// File streaming keeps a bounded memory footprint by threading a ModeState
// through fixed-size chunks:
//
//	err := ctx.EncryptFile("plain.bin", "secret.bin", 4096)
//
// # Security
//
// This library exists to make the mechanics of block-cipher composition
// visible. It provides no authentication, no side-channel hardening, and no
// strength guarantees; do not use it to protect real data.
package blockcrypt
