package model

// DiffEnd holds the positions in both fragments where, scanning from the
// end, their content starts to differ.
type DiffEnd struct {
	A int
	B int
}

// commonPrefix returns the number of leading bytes a and b share.
func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// commonSuffix returns the number of trailing bytes a and b share.
func commonSuffix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}

func findDiffStart(a, b *Fragment, pos int) *int {
	for i := 0; ; i++ {
		x, y := a.MaybeChild(i), b.MaybeChild(i)
		if x == nil || y == nil {
			if x == y {
				return nil
			}
			return &pos
		}
		if x == y {
			pos += x.NodeSize()
			continue
		}
		if !x.SameMarkup(y) {
			return &pos
		}
		if x.IsText() {
			if *x.Text != *y.Text {
				pos += commonPrefix(*x.Text, *y.Text)
				return &pos
			}
		} else if x.Content.Size > 0 || y.Content.Size > 0 {
			if inner := findDiffStart(x.Content, y.Content, pos+1); inner != nil {
				return inner
			}
		}
		pos += x.NodeSize()
	}
}

func findDiffEnd(a, b *Fragment, posA, posB int) *DiffEnd {
	for i, j := a.ChildCount()-1, b.ChildCount()-1; ; i, j = i-1, j-1 {
		x, y := a.MaybeChild(i), b.MaybeChild(j)
		if x == nil || y == nil {
			if x == y {
				return nil
			}
			return &DiffEnd{A: posA, B: posB}
		}
		size := x.NodeSize()
		if x == y {
			posA -= size
			posB -= size
			continue
		}
		if !x.SameMarkup(y) {
			return &DiffEnd{A: posA, B: posB}
		}
		if x.IsText() {
			if *x.Text != *y.Text {
				same := commonSuffix(*x.Text, *y.Text)
				return &DiffEnd{A: posA - same, B: posB - same}
			}
		} else if x.Content.Size > 0 || y.Content.Size > 0 {
			if inner := findDiffEnd(x.Content, y.Content, posA-1, posB-1); inner != nil {
				return inner
			}
		}
		posA -= size
		posB -= size
	}
}
