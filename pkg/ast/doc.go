/*
Package ast defines the parsed form of a tandem document.

Every kind of node, attribute and block is a closed sum type: the set of
implementations is fixed by unexported marker methods, so consumers can switch
over them exhaustively.

# Key Entities

  - Node: Text, Comment, Element, Fragment, StyleElement, Slot and the blocks.
  - Block: PassFailBlock and FinalBlock (conditional chains) and EachBlock.
  - Attribute: ShorthandAttribute and KeyValueAttribute.
  - Expression: the source of an embedded expression, plus its reference path.
  - StyleSheet: the parsed form of a <style> body or a standalone .css file.
*/
package ast
