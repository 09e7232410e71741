package netgroup

import "fmt"

// Parse reads a netgroup(5)-style definition file and returns a
// Database with every group and triple it names. Any parse error (bad
// token, oversized field, length overflow) aborts the whole parse;
// partial results are discarded.
func Parse(input []byte) (*Database, error) {
	d, err := NewDatabase()
	if err != nil {
		return nil, err
	}
	p := &parser{s: input}
	if err := p.parseFile(d); err != nil {
		return nil, err
	}
	return d, nil
}

type parser struct {
	s   []byte
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) at(off int) byte {
	if p.pos+off >= len(p.s) {
		return 0
	}
	return p.s[p.pos+off]
}

// skipLinearWSCont skips spaces, tabs, and backslash-newline
// continuations (both bare \n and \r\n forms); a bare trailing
// backslash not followed by a newline stops the skip (the caller
// treats that as a syntax boundary, matching the original grammar).
func (p *parser) skipLinearWSCont() {
	for {
		c := p.peek()
		if c == ' ' || c == '\t' {
			p.pos++
			continue
		}
		if c == '\\' {
			if p.at(1) == '\n' {
				p.pos += 2
				continue
			}
			if p.at(1) == '\r' && p.at(2) == '\n' {
				p.pos += 3
				continue
			}
		}
		return
	}
}

func isNameStart(c byte) bool {
	return isAlnum(c) || c == '_'
}

func isNameCont(c byte) bool {
	return isAlnum(c) || c == '.' || c == '_' || c == '-'
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scanName consumes a name/token starting at the current position,
// which must satisfy isNameStart, and returns its bytes.
func (p *parser) scanName() []byte {
	start := p.pos
	p.pos++
	for isNameCont(p.peek()) {
		p.pos++
	}
	return p.s[start:p.pos]
}

// parseFile parses the whole input into d.
func (p *parser) parseFile(d *Database) error {
	for p.peek() != 0 {
		p.skipBlankAndComments()
		if p.peek() == 0 {
			break
		}
		if !isNameStart(p.peek()) {
			return fmt.Errorf("%w: expected netgroup name at offset %d", ErrInvalidInput, p.pos)
		}
		name := string(p.scanName())

		c := p.peek()
		if c == ' ' || c == '\t' {
			p.pos++
		} else if c != '\\' {
			// No rules follow; skip to end of line and move on.
			p.skipToEOL()
			continue
		}

		id := d.groupID(name)
		if err := p.parseRules(d, id); err != nil {
			return err
		}
	}
	return nil
}

// skipBlankAndComments advances past newlines and '#'-comment lines,
// honoring backslash-continued comments.
func (p *parser) skipBlankAndComments() {
	for {
		for p.peek() == '\r' || p.peek() == '\n' {
			p.pos++
		}
		if p.peek() == '#' {
			for {
				for p.peek() != '\n' && p.peek() != '\r' && p.peek() != 0 {
					p.pos++
				}
				if p.peek() == 0 || p.pos == 0 || p.s[p.pos-1] != '\\' {
					break
				}
				if p.peek() == '\r' {
					p.pos++
				}
				if p.peek() == '\n' {
					p.pos++
				}
			}
		}
		if p.peek() != '\n' && p.peek() != '\r' {
			return
		}
	}
}

func (p *parser) skipToEOL() {
	for p.peek() != '\n' && p.peek() != '\r' && p.peek() != 0 {
		p.pos++
	}
}

// parseRules parses the rule list following a group name and appends
// each rule's id (positive for a triple, negative for a subgroup) to
// d.rules[id].
func (p *parser) parseRules(d *Database, id int32) error {
	for {
		p.skipLinearWSCont()
		c := p.peek()
		if c == '\n' || c == '\r' || c == 0 {
			return nil
		}
		if c == '\\' {
			return fmt.Errorf("%w: dangling backslash at offset %d", ErrInvalidInput, p.pos)
		}

		var ruleID int32
		if c == '(' {
			t, err := p.parseTriple()
			if err != nil {
				return err
			}
			tid, err := d.tripleID(t)
			if err != nil {
				return err
			}
			ruleID = tid
		} else {
			if !isNameStart(c) {
				return fmt.Errorf("%w: expected '(' or netgroup name at offset %d", ErrInvalidInput, p.pos)
			}
			sub := string(p.scanName())
			ruleID = -d.groupID(sub)
		}
		d.rules[id] = append(d.rules[id], ruleID)
	}
}

// parseTriple parses a "(host,user,domain)" rule starting at '('.
func (p *parser) parseTriple() (Triple, error) {
	p.pos++ // consume '('
	p.skipLinearWSCont()

	host, err := p.parseTripleField(',')
	if err != nil {
		return Triple{}, err
	}
	p.pos++ // consume ','
	p.skipLinearWSCont()

	user, err := p.parseTripleField(',')
	if err != nil {
		return Triple{}, err
	}
	p.pos++ // consume ','
	p.skipLinearWSCont()

	domain, err := p.parseTripleField(')')
	if err != nil {
		return Triple{}, err
	}
	p.pos++ // consume ')'

	return Triple{Host: host, User: user, Domain: domain}, nil
}

// parseTripleField parses one comma- or paren-delimited field of a
// triple, which may be empty (denoting "any").
func (p *parser) parseTripleField(delim byte) (string, error) {
	if p.peek() == 0 {
		return "", fmt.Errorf("%w: unterminated triple at offset %d", ErrInvalidInput, p.pos)
	}
	if p.peek() == delim {
		return "", nil
	}
	if !isNameStart(p.peek()) {
		return "", fmt.Errorf("%w: invalid triple field at offset %d", ErrInvalidInput, p.pos)
	}
	field := string(p.scanName())
	p.skipLinearWSCont()
	if p.peek() != delim {
		return "", fmt.Errorf("%w: expected %q at offset %d", ErrInvalidInput, delim, p.pos)
	}
	return field, nil
}
