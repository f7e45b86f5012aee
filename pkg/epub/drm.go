package epub

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
)

const (
	encryptionPath = "META-INF/encryption.xml"
	sinfPath       = "META-INF/sinf.xml"
)

// Font obfuscation is not DRM; books using it are annotated normally.
var fontObfuscation = map[string]bool{
	"http://www.idpf.org/2008/embedding": true,
	"http://ns.adobe.com/pdf/enc#RC":     true,
}

type encryptionXML struct {
	XMLName       xml.Name `xml:"encryption"`
	EncryptedData []struct {
		EncryptionMethod struct {
			Algorithm string `xml:"Algorithm,attr"`
		} `xml:"EncryptionMethod"`
	} `xml:"EncryptedData"`
}

// checkDRM rejects archives carrying Apple FairPlay or any encryption entry
// other than font obfuscation.
func checkDRM(zr *zip.Reader) error {
	var enc *zip.File
	for _, f := range zr.File {
		switch {
		case strings.EqualFold(f.Name, sinfPath):
			return ErrDRMProtected
		case strings.EqualFold(f.Name, encryptionPath):
			enc = f
		}
	}
	if enc == nil {
		return nil
	}
	rc, err := enc.Open()
	if err != nil {
		return ErrDRMProtected
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, 1<<20))
	if err != nil {
		return ErrDRMProtected
	}
	var doc encryptionXML
	if err := xml.Unmarshal(stripBOM(data), &doc); err != nil {
		return ErrDRMProtected
	}
	for _, ed := range doc.EncryptedData {
		if !fontObfuscation[ed.EncryptionMethod.Algorithm] {
			return ErrDRMProtected
		}
	}
	return nil
}
