// Package signature firma los formularios enviados al partner de shared
// inventory. El verificador del partner reproduce exactamente el mismo
// algoritmo:
//
//	md5( k1=v1&k2=v2&...&kn=vn&key=<appKey> )
//
// con las keys ordenadas ascendente (orden de bytes), sin el campo "sign" y
// con los valores sin escapar. Resultado en hex minúscula.
package signature

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strings"
)

// Field es el nombre del campo de firma en el formulario.
const Field = "sign"

// Canonical arma el string a firmar (sin el sufijo de la key).
func Canonical(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == Field {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
	}
	return b.String()
}

// Generate calcula la firma de fields con key como secreto.
func Generate(fields map[string]string, key string) string {
	sum := md5.Sum([]byte(Canonical(fields) + "&key=" + key))
	return hex.EncodeToString(sum[:])
}

// Verify compara en tiempo constante fields["sign"] contra la firma esperada.
func Verify(fields map[string]string, key string) bool {
	got := strings.ToLower(fields[Field])
	want := Generate(fields, key)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
